// Package router decides which capability answers a question.
//
// Two strategies exist. Keyword walks an ordered rule list and falls through
// on failure. Agent lets the model pick capabilities in a bounded
// Thought/Action/Observation loop.
package router

import (
	"context"
	"fmt"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/capability"
	"github.com/codeincraft/MathAi/internal/llm"
	"github.com/rs/zerolog"
)

const (
	StrategyKeyword = "keyword"
	StrategyAgent   = "agent"
)

type Router interface {
	Route(ctx context.Context, question string) (string, error)
	Name() string
}

// New builds the strategy named by cfg.RouterStrategy over the capabilities in reg.
// The keyword strategy requires the arithmetic, lookup and reasoning capabilities.
func New(cfg *config.Config, model llm.Client, reg *capability.Registry, logger zerolog.Logger, opts ...AgentOption) (Router, error) {
	switch cfg.RouterStrategy {
	case StrategyKeyword:
		keywords, err := LoadRules(cfg.RouterRules)
		if err != nil {
			return nil, err
		}
		rules, err := DefaultRules(reg, keywords)
		if err != nil {
			return nil, err
		}
		return NewKeyword(rules,
			WithSurfaceFailures(cfg.SurfaceFailures),
			WithKeywordLogger(logger),
		)

	case StrategyAgent, "":
		base := []AgentOption{
			WithMaxIterations(cfg.AgentMaxIterations),
			WithEarlyStopping(EarlyStopping(cfg.AgentEarlyStopping)),
			WithAgentLogger(logger),
		}
		return NewAgent(model, reg.List(), reg.Invoke, append(base, opts...)...), nil

	default:
		return nil, fmt.Errorf("unknown router strategy: %s", cfg.RouterStrategy)
	}
}
