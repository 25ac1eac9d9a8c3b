package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// Generator completes a prompt with generated text.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Disabled is a Generator that never produces text.
type Disabled struct{}

// Complete always returns an empty string.
func (Disabled) Complete(context.Context, string) (string, error) {
	return "", nil
}

// NewGenerator builds the Generator selected by cfg, wrapped with its timeout and pacing.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case ProviderOff:
		return Disabled{}, nil
	case ProviderGemini:
		gen, err = NewGeminiGenerator(ctx, cfg)
	case ProviderOllama, ProviderOpenAICompatible, "":
		if cfg.Provider == "" {
			cfg.Provider = ProviderOllama
		}
		gen, err = NewOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
		gen = RateLimited(gen, limiter)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return WithTimeout(gen, timeout), nil
}

// Close releases resources held by gen, if it holds any.
func Close(gen Generator) error {
	if c, ok := gen.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
