package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements Generator against an OpenAI-compatible chat completions API.
// Ollama, LM Studio and vLLM all expose one.
type OpenAIGenerator struct {
	client      *openai.Client
	provider    Provider
	model       string
	temperature float32
}

// NewOpenAIGenerator creates a Generator for the local OpenAI-compatible providers.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	model := cfg.ModelName()
	if model == "" {
		return nil, &Error{Provider: cfg.Provider, Message: "LLM_MODEL must name the local model"}
	}

	key := cfg.APIKey
	if key == "" {
		key = DefaultCompatibleKey
	}
	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = cfg.Endpoint()

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    cfg.Provider,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete generates text for prompt.
func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &Error{Provider: g.provider, Message: "chat completion failed", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Provider: g.provider, Message: "no choices in response", Cause: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}
