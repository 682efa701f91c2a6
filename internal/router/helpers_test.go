package router

import (
	"context"
	"os"
	"sync"

	"github.com/codeincraft/MathAi/internal/capability"
)

type fakeCapability struct {
	name string
	out  string
	err  error

	mu     sync.Mutex
	inputs []string
}

func (f *fakeCapability) Name() string        { return f.name }
func (f *fakeCapability) Description() string { return "fake " + f.name }

func (f *fakeCapability) Run(_ context.Context, input string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeCapability) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type fixture struct {
	math      *fakeCapability
	lookup    *fakeCapability
	reasoning *fakeCapability
	registry  *capability.Registry
}

func newFixture() *fixture {
	f := &fixture{
		math:      &fakeCapability{name: capability.ArithmeticName, out: "✅ 2+2 = 4"},
		lookup:    &fakeCapability{name: capability.LookupName, out: "Page: Ada Lovelace\nSummary: mathematician"},
		reasoning: &fakeCapability{name: capability.ReasoningName, out: "Because of scattering."},
	}
	reg, err := capability.NewRegistry(f.math, f.lookup, f.reasoning)
	if err != nil {
		panic(err)
	}
	f.registry = reg
	return f
}

func (f *fixture) keyword(opts ...KeywordOption) *Keyword {
	rules, err := DefaultRules(f.registry, DefaultKeywords())
	if err != nil {
		panic(err)
	}
	k, err := NewKeyword(rules, opts...)
	if err != nil {
		panic(err)
	}
	return k
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
