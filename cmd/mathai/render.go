package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/codeincraft/MathAi/internal/router"
	"github.com/codeincraft/MathAi/pkg/models"
	"golang.org/x/term"
)

// printer writes answers to a terminal as rendered markdown, or as plain text when piped.
type printer struct {
	w      io.Writer
	render func(string) (string, error)
}

func newPrinter(f *os.File) *printer {
	p := &printer{w: f}
	if !term.IsTerminal(int(f.Fd())) {
		return p
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		p.render = r.Render
	}
	return p
}

func (p *printer) markdown(text string) string {
	if p.render == nil {
		return text
	}
	out, err := p.render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (p *printer) answer(text string) {
	fmt.Fprintf(p.w, "Assistant: %s\n\n", p.markdown(text))
}

func (p *printer) transcript(entries []models.Entry) {
	for _, e := range entries {
		switch e.Role {
		case models.RoleUser:
			fmt.Fprintf(p.w, "You: %s\n", e.Content)
		default:
			p.answer(e.Content)
		}
	}
}

func (p *printer) steps(steps []router.Step) {
	for i, s := range steps {
		if s.Thought != "" {
			fmt.Fprintf(p.w, "  [%d] thought: %s\n", i+1, s.Thought)
		}
		fmt.Fprintf(p.w, "  [%d] %s(%q)\n", i+1, s.Capability, s.Input)
		fmt.Fprintf(p.w, "      -> %s\n", strings.ReplaceAll(s.Output, "\n", "\n         "))
	}
	if len(steps) > 0 {
		fmt.Fprintln(p.w)
	}
}
