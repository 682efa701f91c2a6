package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeincraft/MathAi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{Temperature: 0.2, MaxTokens: 512}

func TestOllamaComplete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "llama3.1:8b",
			Message: ollamaMessage{Role: "assistant", Content: "12*7+1"},
			Done:    true,
		})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "", testDefaults)
	out, err := client.Complete(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: "user", Content: "calculate 12*7+1"}},
		Stop:     []string{"\nObservation:"},
	})
	require.NoError(t, err)

	assert.Equal(t, "12*7+1", out)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.InDelta(t, 0.2, got.Options.Temperature, 1e-6)
	assert.Equal(t, 512, got.Options.NumPredict)
	assert.Equal(t, []string{"\nObservation:"}, got.Options.Stop)
	assert.Equal(t, "ollama/llama3.1:8b", client.Name())
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "missing", testDefaults).Complete(context.Background(), UserPrompt("", "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestReachableProbesOllamaThroughTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(&config.Config{LLMProvider: "ollama", OllamaURL: srv.URL, CallTimeout: time.Second})
	require.NoError(t, err)

	ok, probed := Reachable(context.Background(), client)
	assert.True(t, probed)
	assert.True(t, ok)
}

func TestReachableReportsDownOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	ok, probed := Reachable(context.Background(), NewOllamaClient(url, "", testDefaults))
	assert.True(t, probed)
	assert.False(t, ok)
}

func TestReachableSkipsHostedProviders(t *testing.T) {
	client, err := New(&config.Config{LLMProvider: "groq", GroqAPIKey: "gsk-test", CallTimeout: time.Second})
	require.NoError(t, err)

	_, probed := Reachable(context.Background(), client)
	assert.False(t, probed)
}

func TestOpenAICompatibleComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"llama-3.1-8b-instant",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Rayleigh scattering."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := NewGroqClient("gsk-test", "", srv.URL, testDefaults)
	out, err := client.Complete(context.Background(), UserPrompt("be brief", "why is the sky blue"))
	require.NoError(t, err)

	assert.Equal(t, "Rayleigh scattering.", out)
	assert.Equal(t, "llama-3.1-8b-instant", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "groq/llama-3.1-8b-instant", client.Name())
}

func TestOpenAICompatibleNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("openai", "sk", "gpt-4o-mini", srv.URL, testDefaults).
		Complete(context.Background(), UserPrompt("", "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClaudeComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"Final Answer: 85"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	client := NewClaudeClient("sk-ant", "", srv.URL, testDefaults)
	out, err := client.Complete(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: "user", Content: "q"}},
		Stop:     []string{"\nObservation:"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Final Answer: 85", out)
	assert.EqualValues(t, 512, got["max_tokens"])
	assert.Equal(t, []any{"\nObservation:"}, got["stop_sequences"])
}

type slowClient struct{}

func (slowClient) Name() string { return "slow" }

func (slowClient) Complete(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	client := WithTimeout(slowClient{}, 10*time.Millisecond)

	_, err := client.Complete(context.Background(), UserPrompt("", "hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, "slow", client.Name())
}

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]string{
		"groq":      "groq/llama-3.1-8b-instant",
		"openai":    "openai/gpt-4o-mini",
		"anthropic": "anthropic/claude-3-5-haiku-latest",
		"ollama":    "ollama/llama3.1:8b",
	}
	for provider, name := range cases {
		t.Run(provider, func(t *testing.T) {
			client, err := New(&config.Config{LLMProvider: provider, CallTimeout: time.Second})
			require.NoError(t, err)
			assert.Equal(t, name, client.Name())
		})
	}

	_, err := New(&config.Config{LLMProvider: "bard"})
	assert.Error(t, err)
}
