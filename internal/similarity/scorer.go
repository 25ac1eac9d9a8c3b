package similarity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Embedder turns text into a fixed-width vector. Empty text must yield a zero vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Scorer computes similarity between texts, or between a text and a stored normalized vector.
type Scorer struct {
	embedder Embedder
	dim      int
}

// NewScorer creates a Scorer. A non-positive dim selects Dimension.
func NewScorer(embedder Embedder, dim int) *Scorer {
	if dim <= 0 {
		dim = Dimension
	}
	return &Scorer{embedder: embedder, dim: dim}
}

// Dim returns the expected vector width.
func (s *Scorer) Dim() int { return s.dim }

// Score embeds both texts and returns their cosine similarity.
func (s *Scorer) Score(ctx context.Context, a, b string) (float64, error) {
	var va, vb []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embed(gctx, a)
		va = v
		return err
	})
	g.Go(func() error {
		v, err := s.embed(gctx, b)
		vb = v
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return Cosine(va, vb)
}

// ScoreAgainstVector scores text against a precomputed normalized vector.
func (s *Scorer) ScoreAgainstVector(ctx context.Context, text string, normalized []float32) (float64, error) {
	if len(normalized) != s.dim {
		return 0, &DimensionError{Want: s.dim, Got: len(normalized)}
	}
	v, err := s.EmbedNormalized(ctx, text)
	if err != nil {
		return 0, err
	}
	return Dot(normalized, v)
}

// EmbedNormalized embeds text and returns the L2-normalized vector.
func (s *Scorer) EmbedNormalized(ctx context.Context, text string) ([]float32, error) {
	v, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

func (s *Scorer) embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(v) != s.dim {
		return nil, &DimensionError{Want: s.dim, Got: len(v)}
	}
	return v, nil
}
