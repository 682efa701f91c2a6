package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/codeincraft/MathAi/config"
	"github.com/codeincraft/MathAi/internal/capability"
	"github.com/codeincraft/MathAi/internal/metrics"
	"github.com/codeincraft/MathAi/internal/router"
	"github.com/codeincraft/MathAi/internal/session"
	"github.com/rs/zerolog"
)

var ErrEmptyQuestion = errors.New("question is required")

type Result struct {
	Answer string
	Steps  []router.Step
}

type Assistant struct {
	cfg     *config.Config
	router  router.Router
	locks   *session.Manager
	metrics *metrics.Metrics
	logger  zerolog.Logger
	closers []func() error
}

type Option func(*Assistant)

func WithSessionManager(m *session.Manager) Option {
	return func(a *Assistant) {
		a.locks = m
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assistant) {
		a.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

func New(cfg *config.Config, r router.Router, opts ...Option) *Assistant {
	a := &Assistant{
		cfg:    cfg,
		router: r,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.locks == nil {
		a.locks = session.NewManager(session.WithLogger(a.logger))
	}
	return a
}

// Ask routes question and appends the turn to the session transcript.
//
// Without a model credential it returns config.ErrConfigurationMissing and touches nothing.
// A routing error does not fail the turn: it becomes the "⚠️ Error:" answer.
func (a *Assistant) Ask(ctx context.Context, sess *session.Session, question string) (Result, error) {
	if err := a.cfg.RequireModelKey(); err != nil {
		return Result{}, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}

	var res Result
	err := a.locks.WithLock(ctx, sess.ID, func(ctx context.Context) error {
		ctx = router.WithStepHook(ctx, func(s router.Step) {
			res.Steps = append(res.Steps, s)
		})

		a.logger.Info().Str("session_id", sess.ID).Str("strategy", a.router.Name()).Str("question", truncate(question, 60)).Msg("routing question")

		answer, err := a.router.Route(ctx, question)
		a.metrics.ObserveQuestion(a.router.Name(), err)
		if err != nil {
			a.logger.Error().Err(err).Str("session_id", sess.ID).Msg("routing failed")
			answer = capability.Render(err)
		}

		sess.Transcript.AppendTurn(question, answer)
		sess.Touch()
		res.Answer = answer
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (a *Assistant) Strategy() string {
	return a.router.Name()
}

// Close releases connections opened by Build.
func (a *Assistant) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
