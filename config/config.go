package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeincraft/MathAi/internal/credentials"
	"github.com/kelseyhightower/envconfig"
)

// ErrConfigurationMissing blocks all question processing until a model credential is supplied.
var ErrConfigurationMissing = errors.New("configuration required: model API key is not set")

// ConfigurationPrompt is shown to the user while ErrConfigurationMissing holds.
const ConfigurationPrompt = "Please enter your API Key to continue."

type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

type Config struct {
	LLMProvider     string  `envconfig:"LLM_PROVIDER" default:"groq"`
	GroqAPIKey      string  `envconfig:"GROQ_API_KEY"`
	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string  `envconfig:"ANTHROPIC_API_KEY"`
	LLMModel        string  `envconfig:"LLM_MODEL"`
	LLMBaseURL      string  `envconfig:"LLM_BASE_URL"`
	OllamaURL       string  `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	Temperature     float32 `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	MaxTokens       int     `envconfig:"LLM_MAX_TOKENS" default:"512"`

	RouterStrategy     string `envconfig:"ROUTER_STRATEGY" default:"agent"`
	RouterRules        string `envconfig:"ROUTER_RULES"`
	AgentMaxIterations int    `envconfig:"AGENT_MAX_ITERATIONS" default:"2"`
	AgentEarlyStopping string `envconfig:"AGENT_EARLY_STOPPING" default:"generate"`
	ReasoningTemplate  string `envconfig:"REASONING_TEMPLATE" default:"steps"`
	SurfaceFailures    bool   `envconfig:"ROUTER_SURFACE_FAILURES" default:"false"`

	CallTimeout    time.Duration `envconfig:"CALL_TIMEOUT" default:"30s"`
	LookupMaxChars int           `envconfig:"LOOKUP_MAX_CHARS" default:"500"`
	WikipediaURL   string        `envconfig:"WIKIPEDIA_URL" default:"https://en.wikipedia.org"`
	WikipediaTopK  int           `envconfig:"WIKIPEDIA_TOP_K" default:"3"`

	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort     int           `envconfig:"SERVER_PORT" default:"8080"`
	APIKeyRequired bool          `envconfig:"API_KEY_REQUIRED" default:"false"`
	APIKeys        string        `envconfig:"API_KEYS"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	SessionMaxAge  time.Duration `envconfig:"SESSION_MAX_AGE" default:"24h"`
	SessionLockTTL time.Duration `envconfig:"SESSION_LOCK_TTL" default:"2m"`
}

var defaultModels = map[Provider]string{
	ProviderGroq:      "llama-3.1-8b-instant",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderOllama:    "llama3.1:8b",
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.GroqAPIKey = credentials.GetOrEnv(credentials.KeyGroq, cfg.GroqAPIKey)
	cfg.OpenAIAPIKey = credentials.GetOrEnv(credentials.KeyOpenAI, cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = credentials.GetOrEnv(credentials.KeyAnthropic, cfg.AnthropicAPIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Provider() Provider {
	return Provider(strings.ToLower(strings.TrimSpace(c.LLMProvider)))
}

// Model returns the configured model name or the provider default.
func (c *Config) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	return defaultModels[c.Provider()]
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider() {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func (c *Config) Validate() error {
	if _, ok := defaultModels[c.Provider()]; !ok {
		return fmt.Errorf("unknown LLM_PROVIDER %q (valid: groq, openai, anthropic, ollama)", c.LLMProvider)
	}

	switch c.RouterStrategy {
	case "keyword", "agent":
	default:
		return fmt.Errorf("unknown ROUTER_STRATEGY %q (valid: keyword, agent)", c.RouterStrategy)
	}

	switch c.AgentEarlyStopping {
	case "generate", "last_observation":
	default:
		return fmt.Errorf("unknown AGENT_EARLY_STOPPING %q (valid: generate, last_observation)", c.AgentEarlyStopping)
	}

	switch c.ReasoningTemplate {
	case "steps", "concise":
	default:
		return fmt.Errorf("unknown REASONING_TEMPLATE %q (valid: steps, concise)", c.ReasoningTemplate)
	}

	if c.AgentMaxIterations < 1 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be at least 1")
	}
	if c.LookupMaxChars < 1 {
		return fmt.Errorf("LOOKUP_MAX_CHARS must be at least 1")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("CALL_TIMEOUT must be positive")
	}
	if c.SessionLockTTL < 0 {
		return fmt.Errorf("SESSION_LOCK_TTL must not be negative")
	}
	return nil
}

// RequireModelKey reports ErrConfigurationMissing when the selected provider needs a key that is unset.
// Ollama runs locally and needs no credential.
func (c *Config) RequireModelKey() error {
	if c.Provider() == ProviderOllama {
		return nil
	}
	if c.APIKey() == "" {
		return ErrConfigurationMissing
	}
	return nil
}

func (c *Config) GetAPIKeys() map[string]bool {
	keys := make(map[string]bool)
	if c.APIKeys == "" {
		return keys
	}
	for _, key := range strings.Split(c.APIKeys, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys[key] = true
		}
	}
	return keys
}

func (c *Config) ValidateAPIKey(key string) bool {
	if !c.APIKeyRequired {
		return true
	}
	keys := c.GetAPIKeys()
	if len(keys) == 0 {
		return true
	}
	return keys[key]
}
