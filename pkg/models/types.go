package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) String() string {
	return string(r)
}

// Entry is one message of a session transcript.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Step struct {
	Capability string `json:"capability"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Thought    string `json:"thought,omitempty"`
}

type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type AskResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Steps     []Step `json:"steps,omitempty"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Entry   `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Strategy   string `json:"strategy"`
	Configured bool   `json:"configured"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
