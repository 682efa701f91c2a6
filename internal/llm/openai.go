package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint (OpenAI, Groq).
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
	defaults Defaults
}

func NewOpenAIClient(provider, apiKey, model, baseURL string, defaults Defaults) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
		model:    model,
		defaults: defaults,
	}
}

// NewGroqClient points the OpenAI-compatible client at Groq unless baseURL overrides it.
func NewGroqClient(apiKey, model, baseURL string, defaults Defaults) *OpenAIClient {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return NewOpenAIClient("groq", apiKey, model, baseURL, defaults)
}

func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("%s/%s", c.provider, c.model)
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	req = c.defaults.apply(req)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stop:        req.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s API error: response has no choices", c.provider)
	}

	return resp.Choices[0].Message.Content, nil
}
