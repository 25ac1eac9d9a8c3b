package embedding

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint such as Ollama's.
type OpenAIEmbedder struct {
	client   *openai.Client
	provider Provider
	model    string
	dim      int
}

// NewOpenAIEmbedder creates an embedder for Ollama or another OpenAI-compatible server.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOllama
	}

	model := cfg.Model
	base := strings.TrimRight(cfg.BaseURL, "/")
	if provider == ProviderOllama {
		host := cfg.OllamaHost
		if host == "" {
			host = DefaultOllamaHost
		}
		base = strings.TrimRight(host, "/") + "/v1"
		if model == "" {
			model = DefaultOllamaModel
		}
	}
	if model == "" {
		return nil, &Error{Provider: provider, Message: "embedding model is required"}
	}
	if base == "" {
		return nil, &Error{Provider: provider, Message: "base URL is required"}
	}

	key := cfg.APIKey
	if key == "" {
		key = DefaultCompatibleKey
	}
	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = base

	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		provider: provider,
		model:    model,
		dim:      dimension(cfg),
	}, nil
}

// Embed returns the embedding of text. Blank text yields a zero vector without a request.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return zeroVector(e.dim), nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, &Error{Provider: e.provider, Message: "embedding request failed", Cause: err}
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Provider: e.provider, Message: "no embeddings in response"}
	}

	vec := resp.Data[0].Embedding
	if err := checkDimension(e.provider, vec, e.dim); err != nil {
		return nil, err
	}
	return vec, nil
}
