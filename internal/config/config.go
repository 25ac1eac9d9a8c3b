// Package config loads the service and CLI configuration from a file, the environment and flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/applyease/internal/embedding"
	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/rendering"
	"github.com/jonathan/applyease/internal/similarity"
	"github.com/jonathan/applyease/internal/tailoring"
)

// EnvPrefix prefixes every environment variable derived from a config key.
const EnvPrefix = "APPLYEASE"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Tailoring TailoringConfig `mapstructure:"tailoring"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Render    RenderConfig    `mapstructure:"render"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// MaxConcurrentGenerations bounds tailoring and answer requests in flight.
	MaxConcurrentGenerations int64    `mapstructure:"max-concurrent-generations"`
	AllowedOrigins           []string `mapstructure:"allowed-origins"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// EmbeddingConfig configures the sentence-embedding backend.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	OllamaHost string `mapstructure:"ollama-host"`
	APIKey     string `mapstructure:"api-key"`
	Dimension  int    `mapstructure:"dimension"`
	CachePath  string `mapstructure:"cache-path"`
	CacheSize  int    `mapstructure:"cache-size"`
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider"`
	Model             string  `mapstructure:"model"`
	BaseURL           string  `mapstructure:"base-url"`
	OllamaHost        string  `mapstructure:"ollama-host"`
	APIKey            string  `mapstructure:"api-key"`
	Temperature       float32 `mapstructure:"temperature"`
	TimeoutSeconds    int     `mapstructure:"timeout-seconds"`
	RequestsPerMinute int     `mapstructure:"requests-per-minute"`
}

// TailoringConfig bounds the tailoring prompt.
type TailoringConfig struct {
	ClipChars      int `mapstructure:"clip-chars"`
	MaxTargets     int `mapstructure:"max-targets"`
	MaxPromptChars int `mapstructure:"max-prompt-chars"`
}

// MatchingConfig caps the keyword lists.
type MatchingConfig struct {
	Limit int `mapstructure:"limit"`
}

// RenderConfig configures the document layout.
type RenderConfig struct {
	WidthChars int     `mapstructure:"width-chars"`
	FontSize   float64 `mapstructure:"font-size"`
	Leading    float64 `mapstructure:"leading"`
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	geo := rendering.DefaultGeometry()
	opts := tailoring.DefaultOptions()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max-concurrent-generations", 4)
	v.SetDefault("server.allowed-origins", []string{"*"})

	v.SetDefault("embedding.provider", string(embedding.ProviderOllama))
	v.SetDefault("embedding.ollama-host", embedding.DefaultOllamaHost)
	v.SetDefault("embedding.dimension", similarity.Dimension)
	v.SetDefault("embedding.cache-size", embedding.DefaultCacheSize)

	v.SetDefault("llm.provider", string(llm.ProviderOllama))
	v.SetDefault("llm.ollama-host", llm.DefaultOllamaHost)
	v.SetDefault("llm.base-url", llm.DefaultCompatibleURL)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.timeout-seconds", int(llm.DefaultTimeout/time.Second))

	v.SetDefault("tailoring.clip-chars", opts.ClipChars)
	v.SetDefault("tailoring.max-targets", opts.MaxTargets)
	v.SetDefault("tailoring.max-prompt-chars", opts.MaxPromptChars)

	v.SetDefault("matching.limit", matching.DefaultLimit)

	v.SetDefault("render.width-chars", geo.WidthChars)
	v.SetDefault("render.font-size", geo.FontSize)
	v.SetDefault("render.leading", geo.Leading)
}

// BindEnv maps config keys to APPLYEASE_* variables and to the bare variable names the
// service has always honored.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"server.port":           {"APPLYEASE_SERVER_PORT", "PORT"},
		"database.url":          {"APPLYEASE_DATABASE_URL", "DATABASE_URL"},
		"llm.provider":          {"APPLYEASE_LLM_PROVIDER", "LLM_PROVIDER"},
		"llm.model":             {"APPLYEASE_LLM_MODEL", "LLM_MODEL"},
		"llm.base-url":          {"APPLYEASE_LLM_BASE_URL", "LLM_BASE_URL"},
		"llm.ollama-host":       {"APPLYEASE_LLM_OLLAMA_HOST", "OLLAMA_HOST"},
		"llm.timeout-seconds":   {"APPLYEASE_LLM_TIMEOUT_SECONDS", "LLM_TIMEOUT_SECONDS"},
		"llm.api-key":           {"APPLYEASE_LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
		"embedding.api-key":     {"APPLYEASE_EMBEDDING_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
		"embedding.ollama-host": {"APPLYEASE_EMBEDDING_OLLAMA_HOST", "OLLAMA_HOST"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Load reads path (when non-empty) into v, applies defaults and environment overrides
// and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxConcurrentGenerations < 1 {
		return fmt.Errorf("config error: 'server.max-concurrent-generations' must be at least 1")
	}
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	switch strings.ToLower(c.Embedding.Provider) {
	case "", "ollama", "gemini", "openai_compatible", "lmstudio", "vllm":
	default:
		return fmt.Errorf("config error: unsupported embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.CacheSize < 1 {
		return fmt.Errorf("config error: 'embedding.cache-size' must be at least 1")
	}
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("config error: 'embedding.dimension' must be positive")
	}
	if c.LLM.TimeoutSeconds < 1 {
		return fmt.Errorf("config error: 'llm.timeout-seconds' must be at least 1")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'llm.requests-per-minute' must be non-negative")
	}
	if c.Tailoring.ClipChars < 2 {
		return fmt.Errorf("config error: 'tailoring.clip-chars' must be at least 2")
	}
	if c.Tailoring.MaxTargets < 1 {
		return fmt.Errorf("config error: 'tailoring.max-targets' must be at least 1")
	}
	if c.Tailoring.MaxPromptChars < c.Tailoring.ClipChars {
		return fmt.Errorf("config error: 'tailoring.max-prompt-chars' must be at least 'tailoring.clip-chars'")
	}
	if c.Matching.Limit < 1 {
		return fmt.Errorf("config error: 'matching.limit' must be at least 1")
	}
	if c.Render.WidthChars < 10 {
		return fmt.Errorf("config error: 'render.width-chars' must be at least 10")
	}
	if c.Render.FontSize <= 0 || c.Render.Leading <= 0 {
		return fmt.Errorf("config error: 'render.font-size' and 'render.leading' must be positive")
	}
	return nil
}

// LLMSettings converts the section into an llm.Config.
func (c *Config) LLMSettings() llm.Config {
	provider, _ := llm.ParseProvider(c.LLM.Provider)
	return llm.Config{
		Provider:          provider,
		Model:             c.LLM.Model,
		BaseURL:           c.LLM.BaseURL,
		OllamaHost:        c.LLM.OllamaHost,
		APIKey:            c.LLM.APIKey,
		Temperature:       c.LLM.Temperature,
		Timeout:           time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}

// EmbeddingSettings converts the section into an embedding.Config.
func (c *Config) EmbeddingSettings() embedding.Config {
	return embedding.Config{
		Provider:   embedding.Provider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		BaseURL:    c.Embedding.BaseURL,
		OllamaHost: c.Embedding.OllamaHost,
		APIKey:     c.Embedding.APIKey,
		Dimension:  c.Embedding.Dimension,
		CachePath:  c.Embedding.CachePath,
		CacheSize:  c.Embedding.CacheSize,
	}
}

// TailoringOptions converts the tailoring and matching sections into tailoring.Options.
func (c *Config) TailoringOptions() tailoring.Options {
	return tailoring.Options{
		ClipChars:      c.Tailoring.ClipChars,
		MaxTargets:     c.Tailoring.MaxTargets,
		MaxPromptChars: c.Tailoring.MaxPromptChars,
		MatchLimit:     c.Matching.Limit,
	}
}

// Geometry returns the page geometry with the configured line metrics.
func (c *Config) Geometry() rendering.Geometry {
	geo := rendering.DefaultGeometry()
	geo.WidthChars = c.Render.WidthChars
	geo.FontSize = c.Render.FontSize
	geo.Leading = c.Render.Leading
	return geo
}
