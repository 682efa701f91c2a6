package assistant

import (
	"context"

	"github.com/codeincraft/MathAi/internal/session"
)

// Asker answers one question inside a session.
type Asker interface {
	Ask(ctx context.Context, sess *session.Session, question string) (Result, error)
}
