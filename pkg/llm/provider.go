package llm

import "fmt"

// NewClient picks a provider implementation by name. The key for the
// selected provider must be non-empty; configuration validation
// upstream is expected to have caught missing credentials already.
func NewClient(provider, openAIKey, anthropicKey string) (Client, error) {
	switch provider {
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no API key given")
		}
		return NewOpenAIClient(openAIKey), nil
	case "anthropic":
		if anthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider selected but no API key given")
		}
		return NewAnthropicClient(anthropicKey), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (valid: openai, anthropic)", provider)
	}
}
