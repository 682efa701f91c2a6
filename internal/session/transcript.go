package session

import (
	"sync"

	"github.com/codeincraft/MathAi/pkg/models"
)

// Greeting opens every transcript.
const Greeting = "👋 Hi, I'm your fast AI assistant! Ask me any math or knowledge question."

// Transcript is append-only. After n completed turns it holds 1+2n entries.
type Transcript struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewTranscript() *Transcript {
	return &Transcript{
		entries: []models.Entry{{Role: models.RoleAssistant, Content: Greeting}},
	}
}

// AppendTurn records a question and its answer as one unit.
func (t *Transcript) AppendTurn(question, answer string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries,
		models.Entry{Role: models.RoleUser, Content: question},
		models.Entry{Role: models.RoleAssistant, Content: answer},
	)
}

// Entries returns a copy; callers cannot mutate the transcript through it.
func (t *Transcript) Entries() []models.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Turns is the number of completed question/answer pairs.
func (t *Transcript) Turns() int {
	return (t.Len() - 1) / 2
}
