// Package llmtest provides scripted model clients for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/codeincraft/MathAi/internal/llm"
)

var ErrExhausted = errors.New("no scripted response available")

// Scripted replies with Replies in order and records every request.
// Errs, when set at an index, is returned instead of the reply at that index.
type Scripted struct {
	Replies []string
	Errs    map[int]error

	mu       sync.Mutex
	requests []llm.Request
}

func New(replies ...string) *Scripted {
	return &Scripted{Replies: replies}
}

// Failing returns a client whose every call fails with err.
func Failing(err error) *Scripted {
	return &Scripted{Errs: map[int]error{-1: err}}
}

func (s *Scripted) Name() string {
	return "scripted"
}

func (s *Scripted) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.requests)
	s.requests = append(s.requests, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := s.Errs[-1]; ok {
		return "", err
	}
	if err, ok := s.Errs[idx]; ok {
		return "", err
	}
	if idx >= len(s.Replies) {
		return "", ErrExhausted
	}
	return s.Replies[idx], nil
}

func (s *Scripted) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastPrompt returns the final message content of the most recent request.
func (s *Scripted) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return ""
	}
	msgs := s.requests[len(s.requests)-1].Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
