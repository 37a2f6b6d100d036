package videosummarizer

import (
	"context"
	"log"
	"sync"
	"time"

	"video-summarizer/shared/scheduler"

	"github.com/google/uuid"
)

// SessionStore keeps sessions in memory only; they do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Create() *Session {
	sess := NewSession(uuid.NewString())

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	return sess
}

func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session and cancels its in-flight work.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes sessions with no activity for longer than maxIdle.
// Sessions with a summary in flight are kept.
func (s *SessionStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var evicted []*Session
	for id, sess := range s.sessions {
		if sess.busy() || sess.idleSince().After(cutoff) {
			continue
		}
		evicted = append(evicted, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.close()
	}
	return len(evicted)
}

// EvictionJob wraps EvictIdle for the scheduler.
func (s *SessionStore) EvictionJob(maxIdle time.Duration) scheduler.Job {
	return scheduler.JobFunc{
		JobName: "evict-idle-sessions",
		Fn: func(context.Context) error {
			if n := s.EvictIdle(maxIdle); n > 0 {
				log.Printf("Evicted %d idle session(s), %d remaining", n, s.Len())
			}
			return nil
		},
	}
}
