package chat

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Message struct {
	Role   Role
	Text   string
	Intent Intent
	At     time.Time
}

// Transcript is an append-only, chronologically ordered message log.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func (t *Transcript) Append(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Entries returns a copy of the log.
func (t *Transcript) Entries() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
