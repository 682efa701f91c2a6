package router

import (
	"fmt"
	"regexp"
	"strings"
)

const finalAnswerMarker = "Final Answer:"

var (
	actionRegex      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyRegex  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRegex = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// Decision is what the model asked for in one agent step.
type Decision struct {
	Thought string
	// Exactly one of Final or Action is set.
	Final   string
	IsFinal bool
	Action  string
	Input   string
}

// StepParser reads one model reply into a Decision.
type StepParser func(text string) (Decision, error)

// ParseError marks a reply that does not follow the step grammar.
// The agent loop recovers from it by telling the model what was wrong.
type ParseError struct {
	Reason string
	Text   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model output: %s", e.Reason)
}

// Observation is the text fed back to the model after a malformed reply.
func (e *ParseError) Observation() string {
	return "Invalid Format: " + e.Reason
}

// ParseStep implements the Thought / Action / Action Input / Final Answer grammar.
func ParseStep(text string) (Decision, error) {
	action := actionRegex.FindStringSubmatch(text)
	finalIdx := strings.Index(text, finalAnswerMarker)

	if action != nil {
		if finalIdx >= 0 {
			return Decision{}, &ParseError{
				Reason: "Reply contains both a final answer and an action. Give only one of them.",
				Text:   text,
			}
		}
		name := strings.TrimSpace(action[1])
		input := strings.TrimSpace(action[2])
		if i := strings.Index(input, observationStop); i >= 0 {
			input = input[:i]
		}
		input = strings.TrimSpace(strings.Trim(strings.TrimSpace(input), `"`))
		return Decision{
			Thought: thought(text, action[0]),
			Action:  name,
			Input:   input,
		}, nil
	}

	if finalIdx >= 0 {
		return Decision{
			Thought: strings.TrimSpace(text[:finalIdx]),
			Final:   strings.TrimSpace(text[finalIdx+len(finalAnswerMarker):]),
			IsFinal: true,
		}, nil
	}

	switch {
	case !actionOnlyRegex.MatchString(text):
		return Decision{}, &ParseError{Reason: "Missing 'Action:' after 'Thought:'", Text: text}
	case !actionInputRegex.MatchString(text):
		return Decision{}, &ParseError{Reason: "Missing 'Action Input:' after 'Action:'", Text: text}
	default:
		return Decision{}, &ParseError{Reason: fmt.Sprintf("Could not parse model output: `%s`", text), Text: text}
	}
}

func thought(text, actionBlock string) string {
	idx := strings.Index(text, actionBlock)
	if idx <= 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text[:idx]), "Thought:"))
}
