package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator implements Generator for Google Gemini.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a Gemini-backed Generator.
func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, &Error{Provider: ProviderGemini, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &Error{Provider: ProviderGemini, Message: "failed to create client", Cause: err}
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.ModelName(),
		temperature: cfg.Temperature,
	}, nil
}

// Complete generates text for prompt.
func (g *GeminiGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &Error{Provider: ProviderGemini, Message: "failed to generate content", Cause: err}
	}

	text, err := extractText(resp)
	if err != nil {
		return "", &Error{Provider: ProviderGemini, Message: "unusable response", Cause: err}
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
