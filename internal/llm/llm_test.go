package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
	}{
		{"", ProviderOllama},
		{"Ollama", ProviderOllama},
		{"gemini", ProviderGemini},
		{"lmstudio", ProviderOpenAICompatible},
		{"vllm", ProviderOpenAICompatible},
		{"openai_compatible", ProviderOpenAICompatible},
		{"off", ProviderOff},
		{"none", ProviderOff},
		{"disabled", ProviderOff},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseProvider("anthropic")
	assert.Error(t, err)
}

func TestConfig_Endpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1", Config{Provider: ProviderOllama}.Endpoint())
	assert.Equal(t, "http://gpu-box:11434/v1", Config{Provider: ProviderOllama, OllamaHost: "http://gpu-box:11434/"}.Endpoint())
	assert.Equal(t, "http://localhost:1234/v1", Config{Provider: ProviderOpenAICompatible}.Endpoint())
	assert.Equal(t, "", Config{Provider: ProviderGemini}.Endpoint())
}

func TestConfig_ModelName(t *testing.T) {
	assert.Equal(t, DefaultOllamaModel, Config{Provider: ProviderOllama}.ModelName())
	assert.Equal(t, DefaultGeminiModel, Config{Provider: ProviderGemini}.ModelName())
	assert.Equal(t, "", Config{Provider: ProviderOpenAICompatible}.ModelName())
	assert.Equal(t, "qwen2.5", Config{Provider: ProviderOpenAICompatible, Model: "qwen2.5"}.ModelName())
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "  Jane Doe\nEngineer  ", "Jane Doe\nEngineer"},
		{"generic fence", "```\nJane Doe\nEngineer\n```", "Jane Doe\nEngineer"},
		{"fence with language", "```text\nJane Doe\n```", "Jane Doe"},
		{"fence keeps capitalized first line", "```\nJANE\nDOE\n```", "JANE\nDOE"},
		{"single line fence", "```Jane Doe```", "Jane Doe"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanResponse(tt.input)
			if result != tt.expected {
				t.Errorf("CleanResponse() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func newChatServer(t *testing.T, status int, content string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "local",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerator_Complete(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, "tailored text", nil)

	gen, err := NewOpenAIGenerator(Config{Provider: ProviderOpenAICompatible, BaseURL: srv.URL + "/v1", Model: "local"})
	require.NoError(t, err)

	out, err := gen.Complete(context.Background(), "rewrite this")
	require.NoError(t, err)
	assert.Equal(t, "tailored text", out)
}

func TestOpenAIGenerator_ServerError(t *testing.T) {
	srv := newChatServer(t, http.StatusInternalServerError, "", nil)

	gen, err := NewOpenAIGenerator(Config{Provider: ProviderOllama, OllamaHost: srv.URL})
	require.NoError(t, err)

	_, err = gen.Complete(context.Background(), "rewrite this")
	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ProviderOllama, llmErr.Provider)
}

func TestNewOpenAIGenerator_RequiresModelForCompatible(t *testing.T) {
	_, err := NewOpenAIGenerator(Config{Provider: ProviderOpenAICompatible})
	assert.Error(t, err)
}

func TestNewGenerator_Off(t *testing.T) {
	gen, err := NewGenerator(context.Background(), Config{Provider: ProviderOff})
	require.NoError(t, err)
	out, err := gen.Complete(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, Close(gen))
}

func TestNewGenerator_GeminiRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{Provider: ProviderGemini})
	assert.Error(t, err)
}

func TestNewGenerator_WrapsLocalProvider(t *testing.T) {
	var calls int32
	srv := newChatServer(t, http.StatusOK, "ok", &calls)

	gen, err := NewGenerator(context.Background(), Config{
		Provider:          ProviderOpenAICompatible,
		BaseURL:           srv.URL + "/v1",
		Model:             "local",
		Timeout:           5 * time.Second,
		RequestsPerMinute: 600,
	})
	require.NoError(t, err)

	out, err := gen.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type blockingGenerator struct{}

func (blockingGenerator) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	gen := WithTimeout(blockingGenerator{}, 20*time.Millisecond)
	start := time.Now()
	_, err := gen.Complete(context.Background(), "p")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
}

type echoGenerator struct{ calls int32 }

func (e *echoGenerator) Complete(_ context.Context, prompt string) (string, error) {
	atomic.AddInt32(&e.calls, 1)
	return prompt, nil
}

func TestRateLimited_CancelledWait(t *testing.T) {
	next := &echoGenerator{}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	gen := RateLimited(next, limiter)

	out, err := gen.Complete(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gen.Complete(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Jane "), genai.Text("Doe")}},
		}},
	}
	text, err := extractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text)

	_, err = extractText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}
