package router

import (
	"context"
	"fmt"
	"strings"
)

// Step is one capability run made while answering a question.
type Step struct {
	Capability string `json:"capability"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Thought    string `json:"thought,omitempty"`
	// Log is the raw model text that produced the step, when there was one.
	Log string `json:"-"`
}

// exceptionStep names the pseudo-capability recorded for a malformed model reply.
const exceptionStep = "_Exception"

type StepHook func(Step)

type stepHookKey struct{}

// WithStepHook returns a context whose routing reports every Step to hook.
func WithStepHook(ctx context.Context, hook StepHook) context.Context {
	if hook == nil {
		return ctx
	}
	return context.WithValue(ctx, stepHookKey{}, hook)
}

// EmitStep reports step to the hook installed by WithStepHook, if any.
func EmitStep(ctx context.Context, step Step) {
	if hook, ok := ctx.Value(stepHookKey{}).(StepHook); ok {
		hook(step)
	}
}

// state is the per-question scratch of the agent loop. It is discarded once the question is answered.
type state struct {
	question   string
	iterations int
	steps      []Step
}

func newState(question string) *state {
	return &state{question: question}
}

func (s *state) add(step Step) {
	s.steps = append(s.steps, step)
}

// lastObservation skips format-recovery steps; they carry no capability output.
func (s *state) lastObservation() (string, bool) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		if s.steps[i].Capability != exceptionStep {
			return s.steps[i].Output, true
		}
	}
	return "", false
}

// scratchpad renders the steps so far in the agent's step grammar, ending where the model continues.
func (s *state) scratchpad() string {
	var b strings.Builder
	for _, st := range s.steps {
		b.WriteString(st.Log)
		fmt.Fprintf(&b, "\nObservation: %s\nThought:", st.Output)
	}
	return b.String()
}
