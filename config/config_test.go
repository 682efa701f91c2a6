package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoadDefaults(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.Provider())
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Model())
	assert.Equal(t, "gsk-test", cfg.APIKey())
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-6)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, "agent", cfg.RouterStrategy)
	assert.Equal(t, 2, cfg.AgentMaxIterations)
	assert.Equal(t, 500, cfg.LookupMaxChars)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, 2*time.Minute, cfg.SessionLockTTL)
	assert.NoError(t, cfg.RequireModelKey())
}

func TestLoadFallsBackToKeychain(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("mathai", "anthropic_api_key", "sk-ant"))
	t.Setenv("LLM_PROVIDER", "anthropic")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.APIKey())
}

func TestRequireModelKey(t *testing.T) {
	cfg := &Config{LLMProvider: "groq"}
	assert.ErrorIs(t, cfg.RequireModelKey(), ErrConfigurationMissing)

	cfg.LLMProvider = "ollama"
	assert.NoError(t, cfg.RequireModelKey())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	base := Config{
		LLMProvider:        "groq",
		RouterStrategy:     "keyword",
		AgentEarlyStopping: "generate",
		ReasoningTemplate:  "steps",
		AgentMaxIterations: 2,
		LookupMaxChars:     500,
		CallTimeout:        time.Second,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"provider":       func(c *Config) { c.LLMProvider = "bard" },
		"strategy":       func(c *Config) { c.RouterStrategy = "random" },
		"early stopping": func(c *Config) { c.AgentEarlyStopping = "force" },
		"template":       func(c *Config) { c.ReasoningTemplate = "long" },
		"iterations":     func(c *Config) { c.AgentMaxIterations = 0 },
		"lookup chars":   func(c *Config) { c.LookupMaxChars = 0 },
		"timeout":        func(c *Config) { c.CallTimeout = 0 },
		"lock ttl":       func(c *Config) { c.SessionLockTTL = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	cfg := &Config{APIKeyRequired: true, APIKeys: "alpha, beta,,"}
	assert.Len(t, cfg.GetAPIKeys(), 2)
	assert.True(t, cfg.ValidateAPIKey("beta"))
	assert.False(t, cfg.ValidateAPIKey("gamma"))

	cfg.APIKeyRequired = false
	assert.True(t, cfg.ValidateAPIKey("gamma"))
}
