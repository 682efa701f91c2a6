package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetOrCreate(t *testing.T) {
	s := NewStore()

	sess, created := s.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, sess.ID)

	again, created := s.GetOrCreate(sess.ID)
	assert.False(t, created)
	assert.Same(t, sess, again)

	named, created := s.GetOrCreate("abc")
	assert.True(t, created)
	assert.Equal(t, "abc", named.ID)
	assert.Equal(t, 2, s.Len())
}

func TestStoreCreateGetDelete(t *testing.T) {
	s := NewStore()
	sess := s.Create("abc")
	assert.Same(t, sess, s.Get("abc"))

	assert.True(t, s.Delete("abc"))
	assert.False(t, s.Delete("abc"))
	assert.Nil(t, s.Get("abc"))
}

func TestStoreListAndCleanup(t *testing.T) {
	s := NewStore()
	old := s.Create("old")
	fresh := s.Create("fresh")

	old.mu.Lock()
	old.updatedAt = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()
	fresh.Touch()

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "fresh", list[0].ID)

	assert.Equal(t, 1, s.Cleanup(time.Hour))
	assert.Nil(t, s.Get("old"))
	assert.NotNil(t, s.Get("fresh"))
}
