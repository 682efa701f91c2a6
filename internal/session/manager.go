package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultLockTTL = 2 * time.Minute

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs one question at a time per session. Local mutexes are reference
// counted and dropped once no caller holds or waits on them.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  Locker
	lockTTL time.Duration
	logger  zerolog.Logger
}

type Option func(*Manager)

// WithLocker adds a distributed lock taken after the local one.
func WithLocker(locker Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the lock for session id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire session lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn().Err(err).Str("session_id", id).Msg("failed to release session lock, it will expire")
			}
		}()
	}

	return fn(ctx)
}

// held reports the number of sessions with an active or pending lock.
func (m *Manager) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
