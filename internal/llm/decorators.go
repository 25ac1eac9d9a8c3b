package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to next by timeout.
func WithTimeout(next Generator, timeout time.Duration) Generator {
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (g *timeoutGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Complete(ctx, prompt)
}

func (g *timeoutGenerator) Close() error { return Close(g.next) }

type rateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// RateLimited waits for limiter before each call to next.
func RateLimited(next Generator, limiter *rate.Limiter) Generator {
	return &rateLimitedGenerator{next: next, limiter: limiter}
}

func (g *rateLimitedGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return g.next.Complete(ctx, prompt)
}

func (g *rateLimitedGenerator) Close() error { return Close(g.next) }
