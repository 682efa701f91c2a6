package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeincraft/MathAi/internal/evaluator"
	"github.com/codeincraft/MathAi/internal/llm"
)

const extractionPrompt = "Extract only the pure math expression from this question:\n%s"

// Extractor asks the model to reduce a question to a bare expression.
// The reply is trimmed and otherwise passed on unvalidated.
type Extractor struct {
	model llm.Client
}

func NewExtractor(model llm.Client) *Extractor {
	return &Extractor{model: model}
}

func (e *Extractor) Extract(ctx context.Context, question string) (string, error) {
	out, err := e.model.Complete(ctx, llm.UserPrompt("", fmt.Sprintf(extractionPrompt, question)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type Arithmetic struct {
	extractor *Extractor
	evaluator evaluator.Evaluator
	timeout   time.Duration
}

func NewArithmetic(model llm.Client, ev evaluator.Evaluator, timeout time.Duration) *Arithmetic {
	return &Arithmetic{
		extractor: NewExtractor(model),
		evaluator: ev,
		timeout:   timeout,
	}
}

func (a *Arithmetic) Name() string {
	return ArithmeticName
}

func (a *Arithmetic) Description() string {
	return "Solves simple or compound math expressions quickly."
}

func (a *Arithmetic) Run(ctx context.Context, question string) (string, error) {
	extractCtx, cancel := withTimeout(ctx, a.timeout)
	expression, err := a.extractor.Extract(extractCtx, question)
	cancel()
	if err != nil {
		return "", fail(ExtractionFailure, err)
	}

	evalCtx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()
	result, err := a.evaluator.Evaluate(evalCtx, expression)
	if err != nil {
		return "", fail(EvaluationFailure, err)
	}

	return fmt.Sprintf("%s %s = %s", SuccessMarker, expression, result), nil
}
