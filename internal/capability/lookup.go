package capability

import (
	"context"
	"time"
	"unicode/utf8"
)

const DefaultLookupMaxChars = 500

// Searcher is the encyclopedic backend.
type Searcher interface {
	Summary(ctx context.Context, query string) (string, error)
}

type Lookup struct {
	searcher Searcher
	maxChars int
	timeout  time.Duration
}

func NewLookup(searcher Searcher, maxChars int, timeout time.Duration) *Lookup {
	if maxChars <= 0 {
		maxChars = DefaultLookupMaxChars
	}
	return &Lookup{
		searcher: searcher,
		maxChars: maxChars,
		timeout:  timeout,
	}
}

func (l *Lookup) Name() string {
	return LookupName
}

func (l *Lookup) Description() string {
	return "Searches Wikipedia for factual information."
}

func (l *Lookup) Run(ctx context.Context, query string) (string, error) {
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	summary, err := l.searcher.Summary(ctx, query)
	if err != nil {
		return "", fail(LookupFailure, err)
	}
	return truncate(summary, l.maxChars), nil
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
