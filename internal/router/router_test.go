package router

import (
	"context"
	"testing"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/llm/llmtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsStrategy(t *testing.T) {
	f := newFixture()
	model := llmtest.New("Final Answer: 4")

	cfg := &config.Config{RouterStrategy: "keyword"}
	r, err := New(cfg, model, f.registry, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, r.Name())

	got, err := r.Route(context.Background(), "calculate 2+2")
	require.NoError(t, err)
	assert.Equal(t, "✅ 2+2 = 4", got)
	assert.Equal(t, 0, model.Calls())

	cfg = &config.Config{RouterStrategy: "agent", AgentMaxIterations: 2, AgentEarlyStopping: "generate"}
	r, err = New(cfg, model, f.registry, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, StrategyAgent, r.Name())

	got, err = r.Route(context.Background(), "calculate 2+2")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	f := newFixture()
	_, err := New(&config.Config{RouterStrategy: "random"}, llmtest.New(), f.registry, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewKeywordMissingRulesFile(t *testing.T) {
	f := newFixture()
	cfg := &config.Config{RouterStrategy: "keyword", RouterRules: t.TempDir() + "/missing.yaml"}
	_, err := New(cfg, llmtest.New(), f.registry, zerolog.Nop())
	assert.Error(t, err)
}
