package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"synapse-assistant/internal/chat"
	"synapse-assistant/internal/profile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, delay, idle time.Duration) *MemoryStore {
	t.Helper()
	a, err := chat.NewDefaultAssistant(profile.Default())
	require.NoError(t, err)
	m := NewMemoryStore(a, delay, idle, zap.NewNop())
	t.Cleanup(m.CloseAll)
	return m
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	m := newTestStore(t, 0, time.Minute)

	s1, created := m.GetOrCreate("a")
	assert.True(t, created)
	s2, created := m.GetOrCreate("a")
	assert.False(t, created)
	assert.Same(t, s1, s2)

	got, ok := m.Get("a")
	assert.True(t, ok)
	assert.Same(t, s1, got)

	_, ok = m.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryStore_DeleteClosesSession(t *testing.T) {
	m := newTestStore(t, time.Hour, time.Minute)

	s, _ := m.GetOrCreate("a")
	done, err := s.Submit("hello")
	require.NoError(t, err)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.True(t, s.Closed())
	_, ok := <-done
	assert.False(t, ok)

	// a new session under the same ID starts with an empty transcript
	s2, created := m.GetOrCreate("a")
	assert.True(t, created)
	assert.Equal(t, 0, s2.Len())
}

func TestMemoryStore_SweepClosesIdle(t *testing.T) {
	m := newTestStore(t, 0, time.Minute)

	first, _ := m.GetOrCreate("first")
	second, _ := m.GetOrCreate("second")
	// an undelivered reply keeps a session alive
	m.replyDelay = time.Hour
	pending, _ := m.GetOrCreate("pending")
	_, err := pending.Submit("hi")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, m.Sweep())
	assert.True(t, first.Closed())
	assert.True(t, second.Closed())
	assert.False(t, pending.Closed())
	assert.Equal(t, 1, m.Len())
}

func TestMemoryStore_SweepKeepsActive(t *testing.T) {
	m := newTestStore(t, 0, time.Minute)
	s, _ := m.GetOrCreate("a")
	assert.Equal(t, 0, m.Sweep())
	assert.False(t, s.Closed())
}

func TestMemoryStore_SweepDisabled(t *testing.T) {
	m := newTestStore(t, 0, 0)
	m.GetOrCreate("a")
	m.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	assert.Equal(t, 0, m.Sweep())
}

func TestMemoryStore_RunClosesAllOnCancel(t *testing.T) {
	m := newTestStore(t, time.Hour, time.Minute)
	s, _ := m.GetOrCreate("a")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		m.Run(ctx, 5*time.Millisecond)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, s.Closed())
	assert.Equal(t, 0, m.Len())
}
