package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one endpoint.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends with "/"
	Method string
	Limit  int // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Generation calls hold a model for tens of seconds.
		{Path: "/tailored_resume", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/custom-answer", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},

		// Embedding calls.
		{Path: "/similarity", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/match", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/resume", Method: "PUT", Limit: 30, Window: time.Minute, Burst: 5},

		// Rendering.
		{Path: "/render_pdf", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/tailored_resumes/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// LoadConfig reads RATE_LIMIT_* variables through getenv, falling back to DefaultConfig.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = parseBool(getenv("RATE_LIMIT_ENABLED"), cfg.Enabled)
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}
	cfg.DefaultLimit = parseInt(getenv("RATE_LIMIT_DEFAULT_LIMIT"), cfg.DefaultLimit)
	cfg.DefaultWindow = parseDuration(getenv("RATE_LIMIT_DEFAULT_WINDOW"), cfg.DefaultWindow)
	cfg.CleanupInterval = parseDuration(getenv("RATE_LIMIT_CLEANUP_INTERVAL"), cfg.CleanupInterval)
	cfg.Whitelist = parseIPList(getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

func parseInt(value string, def int) int {
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return n
	}
	return def
}

func parseBool(value string, def bool) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return def
}

func parseDuration(value string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
