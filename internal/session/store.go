// Package session implements the session lifecycle core: the concurrent
// registry of in-flight and completed sessions, the per-session execution
// task, cancellation propagation, and age-based cleanup.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// record pairs a session with its synchronization state. The map lock
// guards insert/remove only; mu serializes all field updates so polling
// one session never blocks on another session's writes.
type record struct {
	mu         sync.Mutex
	sess       domain.Session
	cancel     chan struct{}
	cancelOnce sync.Once
}

// Store is the concurrency-safe registry owning all session records.
// Sessions live in process memory only; a restart loses all history.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewStore constructs an empty registry. Multiple stores may coexist,
// there is no process-wide state.
func NewStore() *Store {
	return &Store{records: make(map[string]*record)}
}

// Create inserts a new pending session and returns its snapshot.
func (s *Store) Create(prompt string, opts domain.Options) domain.Session {
	rec := &record{
		sess: domain.Session{
			ID:        uuid.New().String(),
			Status:    domain.StatusPending,
			Prompt:    prompt,
			Options:   opts,
			Messages:  []domain.Message{},
			CreatedAt: time.Now(),
		},
		cancel: make(chan struct{}),
	}

	s.mu.Lock()
	s.records[rec.sess.ID] = rec
	s.mu.Unlock()

	return rec.sess.Clone()
}

// Get returns a consistent point-in-time copy of the session.
func (s *Store) Get(id string) (domain.Session, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.sess.Clone(), nil
}

// List returns per-record consistent summaries of all sessions.
func (s *Store) List() []domain.SessionSummary {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]domain.SessionSummary, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.sess.Summary())
		rec.mu.Unlock()
	}
	return out
}

// Mutate applies one atomic state transition under the record lock and
// returns the resulting snapshot. A record that already reached a
// terminal status rejects further mutation with ErrAlreadyTerminal:
// whichever transition was applied first wins, the loser is a no-op.
func (s *Store) Mutate(id string, fn func(*domain.Session)) (domain.Session, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.sess.Status.Terminal() {
		return rec.sess.Clone(), domain.ErrAlreadyTerminal
	}
	fn(&rec.sess)
	return rec.sess.Clone(), nil
}

// Append adds one worker message to the record in arrival order.
func (s *Store) Append(id string, msg domain.Message) (domain.Session, error) {
	return s.Mutate(id, func(sess *domain.Session) {
		sess.Messages = append(sess.Messages, msg)
	})
}

// Remove deletes the session outright, reporting whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	delete(s.records, id)
	return ok
}

// RemoveWhere deletes every session matching pred and returns the count.
// Removal is atomic with respect to Get/List: a session is either fully
// visible or fully gone.
func (s *Store) RemoveWhere(pred func(domain.Session) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		rec.mu.Lock()
		match := pred(rec.sess.Clone())
		rec.mu.Unlock()
		if match {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// SignalCancel requests cooperative termination of the session's
// execution task. Safe to call any number of times for the same id.
func (s *Store) SignalCancel(id string) error {
	rec, ok := s.lookup(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	rec.cancelOnce.Do(func() { close(rec.cancel) })
	return nil
}

// SignalAll requests cancellation of every session, used at shutdown.
func (s *Store) SignalAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		rec.cancelOnce.Do(func() { close(rec.cancel) })
	}
}

// CancelRequested exposes the session's cancellation channel. The
// channel is closed when cancellation has been requested; a nil return
// means the session is unknown.
func (s *Store) CancelRequested(id string) <-chan struct{} {
	rec, ok := s.lookup(id)
	if !ok {
		return nil
	}
	return rec.cancel
}

func (s *Store) lookup(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}
