// Package capability holds the units a router can dispatch a question to:
// arithmetic evaluation, encyclopedic lookup and free-form reasoning.
//
// A capability reports faults as a *Failure from Run. Invoke is the boundary
// that turns a failure into its marker-prefixed answer string, so callers that
// only want something to show the user never see an error.
package capability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Names the agent router sees in its prompt.
const (
	ArithmeticName = "Calculator"
	LookupName     = "Wikipedia"
	ReasoningName  = "Reasoning"
)

const (
	SuccessMarker = "✅"
	FailureMarker = "⚠️"
)

type Capability interface {
	Name() string
	// Description tells the agent router which questions the capability resolves.
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

type Kind string

const (
	ExtractionFailure Kind = "extraction"
	EvaluationFailure Kind = "evaluation"
	LookupFailure     Kind = "lookup"
	ReasoningFailure  Kind = "reasoning"
)

type Failure struct {
	Kind  Kind
	Cause error
}

func fail(kind Kind, cause error) *Failure {
	return &Failure{Kind: kind, Cause: cause}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %v", f.Kind, f.Cause)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Message is the user-visible rendering of the failure.
func (f *Failure) Message() string {
	switch f.Kind {
	case ExtractionFailure, EvaluationFailure:
		return fmt.Sprintf("%s Could not compute. Error: %v", FailureMarker, f.Cause)
	case LookupFailure:
		return fmt.Sprintf("%s Wikipedia search failed: %v", FailureMarker, f.Cause)
	case ReasoningFailure:
		return fmt.Sprintf("%s Reasoning error: %v", FailureMarker, f.Cause)
	default:
		return fmt.Sprintf("%s Error: %v", FailureMarker, f.Cause)
	}
}

// Render converts any error into an answer-shaped string.
func Render(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message()
	}
	return fmt.Sprintf("%s Error: %v", FailureMarker, err)
}

// Invoke runs c and always yields a string: the answer, or the rendered failure.
func Invoke(ctx context.Context, c Capability, input string) string {
	out, err := c.Run(ctx, input)
	if err != nil {
		return Render(err)
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Recorder receives one observation per capability run.
type Recorder interface {
	ObserveCapability(name string, elapsed time.Duration, err error)
}

type instrumented struct {
	Capability
	rec Recorder
}

// Instrument reports every Run of c to rec. A nil rec returns c unchanged.
func Instrument(c Capability, rec Recorder) Capability {
	if rec == nil {
		return c
	}
	return &instrumented{Capability: c, rec: rec}
}

func (i *instrumented) Run(ctx context.Context, input string) (string, error) {
	start := time.Now()
	out, err := i.Capability.Run(ctx, input)
	i.rec.ObserveCapability(i.Name(), time.Since(start), err)
	return out, err
}
