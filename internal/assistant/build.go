package assistant

import (
	"context"
	"fmt"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/capability"
	"github.com/codeincraft/MathAi/internal/evaluator"
	"github.com/codeincraft/MathAi/internal/llm"
	"github.com/codeincraft/MathAi/internal/metrics"
	"github.com/codeincraft/MathAi/internal/router"
	"github.com/codeincraft/MathAi/internal/session"
	"github.com/codeincraft/MathAi/internal/wikipedia"
	"github.com/rs/zerolog"
)

// Build wires the configured model, capabilities, router and session locking.
// m may be nil.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*Assistant, error) {
	model, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}

	reg, err := NewRegistry(cfg, model, m, logger)
	if err != nil {
		return nil, err
	}

	r, err := router.New(cfg, model, reg, logger, router.WithIterationObserver(m.ObserveAgentIterations))
	if err != nil {
		return nil, err
	}

	var closers []func() error
	lockOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.SessionLockTTL),
	}
	if cfg.RedisAddr != "" {
		client, err := session.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		lockOpts = append(lockOpts, session.WithLocker(session.NewRedisLocker(client, "")))
		closers = append(closers, client.Close)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("distributed session locking enabled")
	}

	a := New(cfg, r,
		WithSessionManager(session.NewManager(lockOpts...)),
		WithMetrics(m),
		WithLogger(logger),
	)
	a.closers = closers

	logger.Info().
		Str("provider", model.Name()).
		Str("model", cfg.Model()).
		Str("strategy", r.Name()).
		Msg("assistant ready")
	return a, nil
}

// NewRegistry builds the arithmetic, lookup and reasoning capabilities, in that order.
func NewRegistry(cfg *config.Config, model llm.Client, m *metrics.Metrics, logger zerolog.Logger) (*capability.Registry, error) {
	tpl, err := capability.TemplateByName(cfg.ReasoningTemplate)
	if err != nil {
		return nil, err
	}

	wiki := wikipedia.NewClient(cfg.WikipediaURL, cfg.WikipediaTopK, cfg.CallTimeout, logger)

	var rec capability.Recorder
	if m != nil {
		rec = m
	}

	reg, err := capability.NewRegistry(
		capability.Instrument(capability.NewArithmetic(model, evaluator.New(), cfg.CallTimeout), rec),
		capability.Instrument(capability.NewLookup(wiki, cfg.LookupMaxChars, cfg.CallTimeout), rec),
		capability.Instrument(capability.NewReasoning(model, tpl, cfg.CallTimeout), rec),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register capabilities: %w", err)
	}
	return reg, nil
}
