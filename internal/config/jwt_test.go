package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestJWTConfig(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantHours int
		wantSec   string
		wantErr   string
	}{
		{"defaults", map[string]string{"JWT_SECRET": "s"}, 24, "s", ""},
		{"custom expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "72"}, 72, "s", ""},
		{"legacy key", map[string]string{"JWT_KEY": "legacy"}, 24, "legacy", ""},
		{"secret wins over legacy key", map[string]string{"JWT_SECRET": "new", "JWT_KEY": "legacy"}, 24, "new", ""},
		{"missing secret", map[string]string{}, 0, "", "JWT_SECRET is required"},
		{"non-numeric expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "soon"}, 0, "", "invalid JWT_EXPIRATION_HOURS"},
		{"zero expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "0"}, 0, "", "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := jwtConfigFrom(envMap(tt.env))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSec, cfg.Secret)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
}
