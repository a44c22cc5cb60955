package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"synapse-assistant/internal/chat"
)

// MemoryStore owns the live chat sessions. Nothing survives a restart.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*chat.Session
	assistant   *chat.Assistant
	replyDelay  time.Duration
	idleTimeout time.Duration
	log         *zap.Logger
	now         func() time.Time
}

func NewMemoryStore(assistant *chat.Assistant, replyDelay, idleTimeout time.Duration, log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryStore{
		sessions:    make(map[string]*chat.Session),
		assistant:   assistant,
		replyDelay:  replyDelay,
		idleTimeout: idleTimeout,
		log:         log,
		now:         time.Now,
	}
}

// Get returns the live session for id, if any.
func (m *MemoryStore) Get(sessionID string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// GetOrCreate returns the session for id, starting one if needed. The bool
// reports whether the session was created.
func (m *MemoryStore) GetOrCreate(sessionID string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok && !s.Closed() {
		return s, false
	}
	s := chat.NewSession(sessionID, m.assistant, m.replyDelay)
	m.sessions[sessionID] = s
	m.log.Debug("session created", zap.String("session", sessionID))
	return s, true
}

// Delete closes and forgets a session. It reports whether one existed.
func (m *MemoryStore) Delete(sessionID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	m.log.Debug("session closed", zap.String("session", sessionID))
	return true
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns how
// many were closed. Sessions with undelivered replies are kept.
func (m *MemoryStore) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)
	var idle []*chat.Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Pending() == 0 && s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.log.Info("idle sessions closed", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	defer m.CloseAll()
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryStore) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*chat.Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
