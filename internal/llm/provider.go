package llm

import (
	"fmt"

	"github.com/codeincraft/MathAi/config"
)

// New builds the model client selected by cfg, bounded by cfg.CallTimeout.
// Callers check cfg.RequireModelKey first; New does not refuse an empty key.
func New(cfg *config.Config) (Client, error) {
	defaults := Defaults{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var client Client
	switch cfg.Provider() {
	case config.ProviderGroq:
		client = NewGroqClient(cfg.APIKey(), cfg.Model(), cfg.LLMBaseURL, defaults)
	case config.ProviderOpenAI:
		client = NewOpenAIClient("openai", cfg.APIKey(), cfg.Model(), cfg.LLMBaseURL, defaults)
	case config.ProviderAnthropic:
		client = NewClaudeClient(cfg.APIKey(), cfg.Model(), cfg.LLMBaseURL, defaults)
	case config.ProviderOllama:
		client = NewOllamaClient(cfg.OllamaURL, cfg.Model(), defaults)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}

	return WithTimeout(client, cfg.CallTimeout), nil
}
