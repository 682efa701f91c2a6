package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codeincraft/MathAi/internal/capability"
	"github.com/rs/zerolog"
)

var ErrNoRoute = errors.New("no routing rule matched")

// Rule sends matching questions to Capability. A Terminal rule's failure is the answer;
// a non-terminal failure moves on to the next matching rule.
type Rule struct {
	Name       string
	Match      func(lower string) bool
	Capability capability.Capability
	Terminal   bool
}

// ContainsAny matches when the lowercased question contains any of words.
func ContainsAny(words []string) func(string) bool {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return func(q string) bool {
		for _, w := range lowered {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func always(string) bool { return true }

// DefaultRules is math, then lookup, then reasoning for everything else.
func DefaultRules(reg *capability.Registry, kw Keywords) ([]Rule, error) {
	var caps [3]capability.Capability
	for i, name := range []string{capability.ArithmeticName, capability.LookupName, capability.ReasoningName} {
		c, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("keyword router: %w: %s", capability.ErrUnknownCapability, name)
		}
		caps[i] = c
	}

	return []Rule{
		{Name: "math", Match: ContainsAny(kw.Math), Capability: caps[0]},
		{Name: "lookup", Match: ContainsAny(kw.Lookup), Capability: caps[1]},
		{Name: "default", Match: always, Capability: caps[2], Terminal: true},
	}, nil
}

type Keyword struct {
	rules           []Rule
	surfaceFailures bool
	logger          zerolog.Logger
}

type KeywordOption func(*Keyword)

// WithSurfaceFailures returns a non-terminal rule's failure text instead of falling through.
func WithSurfaceFailures(on bool) KeywordOption {
	return func(k *Keyword) {
		k.surfaceFailures = on
	}
}

func WithKeywordLogger(logger zerolog.Logger) KeywordOption {
	return func(k *Keyword) {
		k.logger = logger
	}
}

func NewKeyword(rules []Rule, opts ...KeywordOption) (*Keyword, error) {
	if len(rules) == 0 {
		return nil, errors.New("keyword router needs at least one rule")
	}
	for _, r := range rules {
		if r.Match == nil || r.Capability == nil {
			return nil, fmt.Errorf("rule %q is incomplete", r.Name)
		}
	}

	k := &Keyword{rules: rules, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

func (k *Keyword) Name() string {
	return StrategyKeyword
}

func (k *Keyword) Route(ctx context.Context, question string) (string, error) {
	lower := strings.ToLower(question)

	for _, rule := range k.rules {
		if !rule.Match(lower) {
			continue
		}

		out, err := rule.Capability.Run(ctx, question)
		if err != nil {
			out = capability.Render(err)
		}
		EmitStep(ctx, Step{Capability: rule.Capability.Name(), Input: question, Output: out})

		if err == nil || rule.Terminal || k.surfaceFailures {
			k.logger.Debug().Str("rule", rule.Name).Bool("failed", err != nil).Msg("question routed")
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		k.logger.Debug().Str("rule", rule.Name).Err(err).Msg("rule failed, falling through")
	}

	return "", ErrNoRoute
}
