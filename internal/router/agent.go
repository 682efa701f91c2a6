package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codeincraft/MathAi/internal/capability"
	"github.com/codeincraft/MathAi/internal/llm"
	"github.com/rs/zerolog"
)

const DefaultMaxIterations = 2

type EarlyStopping string

const (
	// StopGenerate makes one more model call asking for a final answer from the steps so far.
	StopGenerate EarlyStopping = "generate"
	// StopLastObservation surfaces the last observation, or StoppedMessage when there is none.
	StopLastObservation EarlyStopping = "last_observation"
)

// Invoker runs the named capability. An unknown name must yield an error wrapping capability.ErrUnknownCapability.
type Invoker func(ctx context.Context, name, input string) (string, error)

type Agent struct {
	model         llm.Client
	invoke        Invoker
	parse         StepParser
	names         []string
	prefix        string
	maxIterations int
	earlyStopping EarlyStopping
	onIterations  func(int)
	logger        zerolog.Logger
}

type AgentOption func(*Agent)

func WithMaxIterations(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

func WithEarlyStopping(method EarlyStopping) AgentOption {
	return func(a *Agent) {
		if method != "" {
			a.earlyStopping = method
		}
	}
}

func WithStepParser(parse StepParser) AgentOption {
	return func(a *Agent) {
		if parse != nil {
			a.parse = parse
		}
	}
}

// WithIterationObserver receives the number of loop iterations each question used.
func WithIterationObserver(fn func(int)) AgentOption {
	return func(a *Agent) {
		a.onIterations = fn
	}
}

func WithAgentLogger(logger zerolog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent builds the agent strategy. caps only feed the prompt; every action goes through invoke.
func NewAgent(model llm.Client, caps []capability.Capability, invoke Invoker, opts ...AgentOption) *Agent {
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.Name())
	}

	a := &Agent{
		model:         model,
		invoke:        invoke,
		parse:         ParseStep,
		names:         names,
		prefix:        buildAgentPrefix(caps),
		maxIterations: DefaultMaxIterations,
		earlyStopping: StopGenerate,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string {
	return StrategyAgent
}

func (a *Agent) Route(ctx context.Context, question string) (string, error) {
	st := newState(question)
	defer func() {
		if a.onIterations != nil {
			a.onIterations(st.iterations)
		}
	}()

	for st.iterations < a.maxIterations {
		st.iterations++
		a.logger.Debug().Int("iteration", st.iterations).Msg("agent step")

		reply, err := a.model.Complete(ctx, a.request(st, ""))
		if err != nil {
			return "", fmt.Errorf("agent step %d: %w", st.iterations, err)
		}

		decision, err := a.parse(reply)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return "", fmt.Errorf("agent step %d: %w", st.iterations, err)
			}
			a.logger.Warn().Str("reason", perr.Reason).Msg("malformed agent step")
			a.record(ctx, st, Step{
				Capability: exceptionStep,
				Input:      "Invalid or incomplete response",
				Output:     perr.Observation(),
				Log:        reply,
			})
			continue
		}

		if decision.IsFinal {
			return decision.Final, nil
		}

		observation, err := a.invoke(ctx, decision.Action, decision.Input)
		if errors.Is(err, capability.ErrUnknownCapability) {
			observation = unknownCapabilityObservation(decision.Action, a.names)
		} else if err != nil {
			return "", fmt.Errorf("capability %s: %w", decision.Action, err)
		}

		a.logger.Info().Str("capability", decision.Action).Str("input", decision.Input).Msg("agent action")
		a.record(ctx, st, Step{
			Capability: decision.Action,
			Input:      decision.Input,
			Output:     observation,
			Thought:    decision.Thought,
			Log:        reply,
		})
	}

	return a.stop(ctx, st)
}

func (a *Agent) record(ctx context.Context, st *state, step Step) {
	st.add(step)
	EmitStep(ctx, step)
}

func (a *Agent) request(st *state, suffix string) llm.Request {
	prompt := a.prefix + fmt.Sprintf(agentPromptSuffix, st.question) + st.scratchpad() + suffix
	req := llm.UserPrompt("", prompt)
	req.Stop = []string{observationStop}
	return req
}

func (a *Agent) stop(ctx context.Context, st *state) (string, error) {
	a.logger.Info().Int("iterations", st.iterations).Str("method", string(a.earlyStopping)).Msg("agent iteration limit reached")

	switch a.earlyStopping {
	case StopLastObservation:
		if obs, ok := st.lastObservation(); ok {
			return obs, nil
		}
		return StoppedMessage, nil

	case StopGenerate:
		reply, err := a.model.Complete(ctx, a.request(st, forceFinalAnswer))
		if err != nil {
			return "", fmt.Errorf("agent final answer: %w", err)
		}
		if decision, err := a.parse(reply); err == nil && decision.IsFinal {
			return decision.Final, nil
		}
		return strings.TrimSpace(reply), nil

	default:
		return "", fmt.Errorf("unknown early stopping method: %s", a.earlyStopping)
	}
}
