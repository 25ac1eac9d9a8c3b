// Package embedding provides sentence-embedding backends for similarity scoring.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/similarity"
)

// Provider names an embedding backend.
type Provider string

const (
	ProviderOllama           Provider = "ollama"
	ProviderOpenAICompatible Provider = "openai_compatible"
	ProviderGemini           Provider = "gemini"
)

// Defaults per provider.
const (
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultOllamaModel   = "all-minilm"
	DefaultGeminiModel   = "gemini-embedding-001"
	DefaultCompatibleKey = "lm-studio"
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider   Provider
	Model      string
	BaseURL    string
	OllamaHost string
	APIKey     string
	Dimension  int
	// CachePath is a SQLite file for persisted embeddings. Empty keeps the cache in memory.
	CachePath string
	// CacheSize caps the in-memory cache; zero selects DefaultCacheSize.
	CacheSize int
	Logger    *zap.Logger
}

// Error describes a failed embedding call.
type Error struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding %s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds the configured embedder wrapped in a cache. The returned close function
// releases the cache store.
func New(ctx context.Context, cfg Config) (similarity.Embedder, func() error, error) {
	var (
		base  similarity.Embedder
		model string
		err   error
	)
	cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	switch cfg.Provider {
	case ProviderGemini:
		var g *GeminiEmbedder
		g, err = NewGeminiEmbedder(ctx, cfg)
		if g != nil {
			base, model = g, g.model
		}
	case ProviderOllama, "", ProviderOpenAICompatible, "lmstudio", "vllm":
		if cfg.Provider != ProviderOllama && cfg.Provider != "" {
			cfg.Provider = ProviderOpenAICompatible
		}
		var o *OpenAIEmbedder
		o, err = NewOpenAIEmbedder(cfg)
		if o != nil {
			base, model = o, o.model
		}
	default:
		return nil, nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, nil, err
	}

	var store Store
	closeFn := func() error { return nil }
	if cfg.CachePath != "" {
		sc, err := OpenSQLiteCache(ctx, cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = sc, sc.Close
	}
	return NewCached(base, model, store, CacheOptions{Size: cfg.CacheSize, Logger: cfg.Logger}), closeFn, nil
}

func dimension(cfg Config) int {
	if cfg.Dimension <= 0 {
		return similarity.Dimension
	}
	return cfg.Dimension
}

func zeroVector(dim int) []float32 {
	return make([]float32, dim)
}

func checkDimension(p Provider, vec []float32, dim int) error {
	if len(vec) != dim {
		return &Error{Provider: p, Message: "unexpected dimension", Cause: &similarity.DimensionError{Want: dim, Got: len(vec)}}
	}
	return nil
}
