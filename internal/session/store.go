package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID         string
	Transcript *Transcript
	CreatedAt  time.Time

	mu        sync.Mutex
	updatedAt time.Time
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Transcript: NewTranscript(),
		CreatedAt:  now,
		updatedAt:  now,
	}
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh session. An empty id gets a generated one; an existing id is replaced.
func (s *Store) Create(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	sess := newSession(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return sess
}

func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[id]
}

// GetOrCreate returns the session for id, creating it when absent.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess := s.Get(id); sess != nil {
			return sess, false
		}
	} else {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	sess := newSession(id)
	s.sessions[id] = sess
	return sess, true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// List returns sessions, most recently updated first.
func (s *Store) List() []*Session {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt().After(list[j].UpdatedAt())
	})
	return list
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup drops sessions idle for longer than maxAge and reports how many went.
func (s *Store) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
