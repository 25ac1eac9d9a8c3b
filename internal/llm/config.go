// Package llm provides text-generation backends behind a single Generator interface.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names a generation backend.
type Provider string

const (
	// ProviderGemini uses the Google Gemini API.
	ProviderGemini Provider = "gemini"
	// ProviderOllama uses a local Ollama server through its OpenAI-compatible endpoint.
	ProviderOllama Provider = "ollama"
	// ProviderOpenAICompatible covers LM Studio, vLLM and any other /v1/chat/completions server.
	ProviderOpenAICompatible Provider = "openai_compatible"
	// ProviderOff disables generation entirely.
	ProviderOff Provider = "off"
)

// ParseProvider maps a configured provider name, including its aliases, to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ollama":
		return ProviderOllama, nil
	case "gemini":
		return ProviderGemini, nil
	case "lmstudio", "openai_compatible", "vllm", "openai":
		return ProviderOpenAICompatible, nil
	case "off", "none", "disabled":
		return ProviderOff, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider %q", name)
	}
}

// Defaults for the local backends.
const (
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultCompatibleURL = "http://localhost:1234/v1"
	DefaultOllamaModel   = "llama3.1:8b"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultCompatibleKey = "lm-studio"
	DefaultTimeout       = 45 * time.Second
	DefaultTemperature   = 0.4
)

// Config selects and configures a generation backend.
type Config struct {
	Provider    Provider
	Model       string
	BaseURL     string
	OllamaHost  string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	// RequestsPerMinute paces outbound calls when positive.
	RequestsPerMinute int
}

// DefaultConfig returns the configuration used when nothing is set: local Ollama.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOllama,
		OllamaHost:  DefaultOllamaHost,
		BaseURL:     DefaultCompatibleURL,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderOllama:
		return DefaultOllamaModel
	}
	return ""
}

// Endpoint returns the OpenAI-compatible base URL for the local providers.
func (c Config) Endpoint() string {
	switch c.Provider {
	case ProviderOllama:
		host := c.OllamaHost
		if host == "" {
			host = DefaultOllamaHost
		}
		return strings.TrimRight(host, "/") + "/v1"
	case ProviderOpenAICompatible:
		base := c.BaseURL
		if base == "" {
			base = DefaultCompatibleURL
		}
		return strings.TrimRight(base, "/")
	}
	return ""
}
