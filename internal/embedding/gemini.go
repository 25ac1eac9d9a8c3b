package embedding

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GeminiEmbedder calls the Gemini embedding API with a reduced output dimensionality.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGeminiEmbedder creates a Gemini-backed embedder.
func NewGeminiEmbedder(ctx context.Context, cfg Config) (*GeminiEmbedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &Error{Provider: ProviderGemini, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &Error{Provider: ProviderGemini, Message: "create genai client", Cause: err}
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiEmbedder{client: client, model: model, dim: dimension(cfg)}, nil
}

// Embed returns the embedding of text. Blank text yields a zero vector without a request.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return zeroVector(e.dim), nil
	}

	dim := int32(e.dim)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, &Error{Provider: ProviderGemini, Message: "embed content", Cause: err}
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, &Error{Provider: ProviderGemini, Message: "no embeddings in response"}
	}

	vec := resp.Embeddings[0].Values
	if err := checkDimension(ProviderGemini, vec, e.dim); err != nil {
		return nil, err
	}
	return vec, nil
}
