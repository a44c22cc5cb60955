package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

var ErrSessionClosed = errors.New("chat session closed")

type pendingReply struct {
	due  time.Time
	msg  Message
	done chan Message
}

// Session is one chat surface: a transcript plus the scheduled bot replies
// that belong to it. Replies are delivered in submission order, each no
// earlier than its submission time plus the reply delay. Close cancels every
// reply that has not been delivered yet.
type Session struct {
	ID string

	assistant  *Assistant
	delay      time.Duration
	transcript Transcript
	now        func() time.Time

	mu         sync.Mutex
	queue      []*pendingReply
	closed     bool
	lastActive time.Time

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewSession(id string, assistant *Assistant, delay time.Duration) *Session {
	if delay < 0 {
		delay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		assistant: assistant,
		delay:     delay,
		now:       time.Now,
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.lastActive = s.now()
	s.wg.Go(s.run)
	return s
}

// Submit records the user's message and schedules the reply. The returned
// channel yields the bot message once it is in the transcript; it is closed
// without a value if the session closes first.
func (s *Session) Submit(text string) (<-chan Message, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	now := s.now()
	s.lastActive = now
	in, reply := s.assistant.Reply(text)
	s.transcript.Append(Message{Role: RoleUser, Text: text, Intent: in, At: now})
	p := &pendingReply{
		due:  now.Add(s.delay),
		msg:  Message{Role: RoleBot, Text: reply, Intent: in},
		done: make(chan Message, 1),
	}
	s.queue = append(s.queue, p)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return p.done, nil
}

func (s *Session) run() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}
		next := s.queue[0]
		s.mu.Unlock()

		timer := time.NewTimer(time.Until(next.due))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.queue = s.queue[1:]
		msg := next.msg
		msg.At = s.now()
		s.transcript.Append(msg)
		s.mu.Unlock()

		next.done <- msg
		close(next.done)
	}
}

// Close cancels undelivered replies and waits for the scheduler to stop. The
// transcript is never modified afterwards. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dropped := s.queue
	s.queue = nil
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for _, p := range dropped {
		close(p.done)
	}
}

func (s *Session) Transcript() []Message {
	return s.transcript.Entries()
}

func (s *Session) Len() int {
	return s.transcript.Len()
}

// Pending reports how many replies are scheduled but not yet delivered.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
