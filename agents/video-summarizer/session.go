package videosummarizer

import (
	"context"
	"sync"
	"time"

	"video-summarizer/internal/models"
)

type State string

const (
	StateIdle              State = "idle"
	StateResolvingMetadata State = "resolving_metadata"
	StateGeneratingSummary State = "generating_summary"
	StateReady             State = "ready"
	StateFailed            State = "failed"
)

// Session is one user's held state: the resolved video, its summary and the
// questions asked about it. Every orchestration call takes the session
// explicitly; many sessions may run side by side.
//
// Each summary invocation gets a new generation number. Results carrying an
// older generation are dropped, so a slow stale response can never
// overwrite what a newer request produced.
type Session struct {
	id string

	mu           sync.Mutex
	state        State
	generation   uint64
	cancel       context.CancelFunc
	videoURL     string
	metadata     *models.VideoMetadata
	summary      *models.Summary
	history      []models.QuestionAnswer
	lastError    string
	createdAt    time.Time
	lastActivity time.Time
}

// SessionSnapshot is a copy of a session safe to hand out.
type SessionSnapshot struct {
	ID           string                  `json:"id"`
	State        State                   `json:"state"`
	VideoURL     string                  `json:"youtubeURL,omitempty"`
	Metadata     *models.VideoMetadata   `json:"metadata,omitempty"`
	Summary      *models.Summary         `json:"summary,omitempty"`
	History      []models.QuestionAnswer `json:"history"`
	Error        string                  `json:"error,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	LastActivity time.Time               `json:"lastActivity"`
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		id:           id,
		state:        StateIdle,
		createdAt:    now,
		lastActivity: now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:           s.id,
		State:        s.state,
		VideoURL:     s.videoURL,
		History:      append([]models.QuestionAnswer{}, s.history...),
		Error:        s.lastError,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}
	if s.metadata != nil {
		m := *s.metadata
		snap.Metadata = &m
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}

// begin starts a new invocation for videoURL: any in-flight one is
// cancelled and its results will be dropped. The held video, summary,
// history and error are cleared.
func (s *Session) begin(parent context.Context, videoURL string) (context.Context, context.CancelFunc, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videoURL = videoURL
	s.metadata = nil
	return s.beginLocked(parent)
}

// beginResummarize starts a new invocation that keeps the resolved video.
// It fails when no summary is held.
func (s *Session) beginResummarize(parent context.Context) (context.Context, context.CancelFunc, uint64, *models.VideoMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady || s.summary == nil || s.metadata == nil {
		s.lastError = ErrNoActiveSummary.Error()
		s.lastActivity = time.Now()
		return nil, nil, 0, nil, false
	}
	metadata := s.metadata
	ctx, cancel, gen := s.beginLocked(parent)
	return ctx, cancel, gen, metadata, true
}

func (s *Session) beginLocked(parent context.Context) (context.Context, context.CancelFunc, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)

	s.generation++
	s.cancel = cancel
	s.state = StateIdle
	s.summary = nil
	s.history = nil
	s.lastError = ""
	s.lastActivity = time.Now()

	return ctx, cancel, s.generation
}

// advance moves a current invocation to state. It reports false when gen
// has been superseded.
func (s *Session) advance(gen uint64, state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.state = state
	s.lastActivity = time.Now()
	return true
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

func (s *Session) setMetadata(gen uint64, metadata *models.VideoMetadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.metadata = metadata
	return true
}

func (s *Session) complete(gen uint64, summary *models.Summary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.summary = summary
	s.state = StateReady
	s.cancel = nil
	s.lastActivity = time.Now()
	return true
}

func (s *Session) fail(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.state = StateFailed
	s.lastError = err.Error()
	s.cancel = nil
	s.lastActivity = time.Now()
	return true
}

// heldSummary returns the summary questions are asked against and the
// generation it belongs to. The last error is replaced: cleared when a
// summary is held, ErrNoActiveSummary otherwise.
func (s *Session) heldSummary() (*models.Summary, *models.VideoMetadata, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
	if s.state != StateReady || s.summary == nil {
		s.lastError = ErrNoActiveSummary.Error()
		return nil, nil, 0, false
	}
	s.lastError = ""
	return s.summary, s.metadata, s.generation, true
}

// appendAnswer records qa unless the summary it was asked against has been
// replaced in the meantime.
func (s *Session) appendAnswer(gen uint64, qa models.QuestionAnswer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.summary == nil {
		return false
	}
	s.history = append(s.history, qa)
	s.lastActivity = time.Now()
	return true
}

// recordError keeps the summary state as is.
func (s *Session) recordError(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	s.lastError = err.Error()
	s.lastActivity = time.Now()
}

// close cancels any in-flight invocation.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateResolvingMetadata || s.state == StateGeneratingSummary
}
