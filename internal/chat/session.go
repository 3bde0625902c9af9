package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redcardinal8/MeetingAgent/internal/instrumentation"
)

// draftKind identifies which operation a draft is collecting answers for.
type draftKind int

const (
	draftNone draftKind = iota
	draftBook
	draftList
	draftCancel
	draftAvailability
)

// Draft accumulates the slot values for an in-flight operation across
// turns. Asked records which field the last question was about, so the
// next utterance can be interpreted as its answer.
type Draft struct {
	Kind draftKind

	Title           string
	AttendeeName    string
	AttendeeEmail   string
	Date            string // YYYY-MM-DD
	Start           string // HH:MM
	TimeZone        string
	DurationMinutes int
	Reason          string

	Asked string
}

// Session is a single conversation's state.
type Session struct {
	ID         string
	CreatedAt  time.Time
	LastActive time.Time
	Draft      *Draft

	// mu serializes turns against this session. The HTTP transport can
	// deliver chat calls for one session concurrently.
	mu sync.Mutex
}

// Store keeps chat sessions in memory and expires idle ones in the
// background.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStore creates a session store that expires sessions idle for longer
// than timeout. The background janitor runs until Stop is called.
func NewStore(timeout time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	go s.janitor()
	return s
}

// SetMetrics attaches session lifecycle metrics to the store.
func (s *Store) SetMetrics(m *instrumentation.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// Get returns the session with the given ID, creating it when the ID is
// unknown or empty. The returned session's ID is always valid for
// subsequent calls.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.LastActive = time.Now()
			return sess
		}
	}

	sess := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	s.sessions[sess.ID] = sess

	if s.metrics != nil {
		s.metrics.RecordSessionStart(context.Background(), "chat")
	}
	s.logger.Debug("chat session created", "session", sess.ID)
	return sess
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stop terminates the background janitor.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Store) janitor() {
	interval := s.timeout / 4
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.timeout)
	for id, sess := range s.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, id)
			if s.metrics != nil {
				s.metrics.RecordSessionEnd(context.Background(), "chat")
			}
			s.logger.Debug("chat session expired", "session", id)
		}
	}
}
