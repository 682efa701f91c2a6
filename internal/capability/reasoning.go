package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeincraft/MathAi/internal/llm"
)

// Template is the fixed prompt shape a Reasoning capability uses for every question.
type Template struct {
	Name   string
	System string
	Prompt string // must contain one %s for the question
}

var (
	TemplateSteps = Template{
		Name: "steps",
		Prompt: "Answer the question clearly in 2 short steps:\n" +
			"1️⃣ Explain briefly (max 2 sentences)\n" +
			"2️⃣ Give final answer.\n\n" +
			"Question: %s\nAnswer:",
	}
	TemplateConcise = Template{
		Name:   "concise",
		System: "You are a helpful assistant. Answer the user's question concisely in 2-3 sentences.",
		Prompt: "%s",
	}
)

func TemplateByName(name string) (Template, error) {
	switch name {
	case "", TemplateSteps.Name:
		return TemplateSteps, nil
	case TemplateConcise.Name:
		return TemplateConcise, nil
	default:
		return Template{}, fmt.Errorf("unknown reasoning template: %s", name)
	}
}

type Reasoning struct {
	model    llm.Client
	template Template
	timeout  time.Duration
}

func NewReasoning(model llm.Client, template Template, timeout time.Duration) *Reasoning {
	return &Reasoning{
		model:    model,
		template: template,
		timeout:  timeout,
	}
}

func (r *Reasoning) Name() string {
	return ReasoningName
}

func (r *Reasoning) Description() string {
	return "Provides short reasoning and final answer."
}

func (r *Reasoning) Run(ctx context.Context, question string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(r.template.Prompt, question)
	out, err := r.model.Complete(ctx, llm.UserPrompt(r.template.System, prompt))
	if err != nil {
		return "", fail(ReasoningFailure, err)
	}
	return strings.TrimSpace(out), nil
}
