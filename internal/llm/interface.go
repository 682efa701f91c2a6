package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single completion call. System is optional; Messages must hold at least one user turn.
type Request struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	Stop        []string
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Defaults carries the generation parameters applied when a Request leaves them zero.
type Defaults struct {
	Temperature float32
	MaxTokens   int
}

func (d Defaults) apply(req Request) Request {
	if req.Temperature == 0 {
		req.Temperature = d.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = d.MaxTokens
	}
	return req
}

// UserPrompt builds a one-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}

type timeoutClient struct {
	client  Client
	timeout time.Duration
}

// WithTimeout bounds every Complete call on c by d.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{client: c, timeout: d}
}

func (t *timeoutClient) Name() string {
	return t.client.Name()
}

func (t *timeoutClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.client.Complete(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s timed out after %s: %w", t.client.Name(), t.timeout, err)
	}
	return out, err
}

type prober interface {
	IsAvailable(ctx context.Context) bool
}

// Reachable reports whether c's backend answers a health probe. Clients without
// a probe report probed=false.
func Reachable(ctx context.Context, c Client) (ok, probed bool) {
	if t, isTimeout := c.(*timeoutClient); isTimeout {
		c = t.client
	}
	p, isProber := c.(prober)
	if !isProber {
		return false, false
	}
	return p.IsAvailable(ctx), true
}
