package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds the secret and lifetime of bearer tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (or the older JWT_KEY) and JWT_EXPIRATION_HOURS (default 24).
func NewJWTConfig() (*JWTConfig, error) {
	return jwtConfigFrom(os.Getenv)
}

func jwtConfigFrom(getenv func(string) string) (*JWTConfig, error) {
	secret := getenv("JWT_SECRET")
	if secret == "" {
		secret = getenv("JWT_KEY")
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours := 24
	if raw := getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		hours = n
	}

	cfg := &JWTConfig{Secret: secret, ExpirationHours: hours}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *JWTConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
