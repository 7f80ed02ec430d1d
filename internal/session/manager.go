package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/worker"
)

// Publisher receives live session events (message appended, status
// changed). Implemented by the websocket hub; a nil publisher is fine.
type Publisher interface {
	Publish(ev domain.Event)
}

// OptionsValidator vets a start configuration before a session is
// created. A rejection surfaces to the caller as InvalidInput.
type OptionsValidator interface {
	Validate(ctx context.Context, opts domain.Options) error
}

// Manager is the session lifecycle facade: it creates sessions, launches
// one execution task per session, serves snapshots, issues cancellation,
// and performs age-based cleanup.
type Manager struct {
	store     *Store
	worker    worker.Worker
	validator OptionsValidator
	pub       Publisher
	log       *slog.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

// Option customizes Manager construction.
type Option func(*Manager)

// WithValidator installs a start-configuration validator.
func WithValidator(v OptionsValidator) Option {
	return func(m *Manager) { m.validator = v }
}

// WithPublisher installs a live event publisher.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.pub = p }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithSessionTimeout cancels sessions that run longer than d. Zero
// disables the timeout; there is no hard limit built into the core.
func WithSessionTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// NewManager composes the store with the worker and optional collaborators.
func NewManager(store *Store, w worker.Worker, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		worker: w,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start validates the request, creates a pending session and launches
// its execution task. The returned snapshot reflects the pending state.
func (m *Manager) Start(ctx context.Context, prompt string, opts domain.Options) (domain.Session, error) {
	if strings.TrimSpace(prompt) == "" {
		return domain.Session{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	if opts.PermissionMode != "" && !opts.PermissionMode.Valid() {
		return domain.Session{}, fmt.Errorf("%w: unknown permission_mode %q", domain.ErrInvalidInput, opts.PermissionMode)
	}
	if m.validator != nil {
		if err := m.validator.Validate(ctx, opts); err != nil {
			return domain.Session{}, err
		}
	}

	sess := m.store.Create(prompt, opts)
	m.log.Info("session created", "session_id", sess.ID)

	m.wg.Add(1)
	go m.run(sess.ID, prompt, opts)

	return sess, nil
}

// Status returns a consistent snapshot of the session.
func (m *Manager) Status(id string) (domain.Session, error) {
	return m.store.Get(id)
}

// Sessions lists summaries of every known session.
func (m *Manager) Sessions() []domain.SessionSummary {
	return m.store.List()
}

// Cancel requests cooperative termination. Cancelling a session that
// already reached a terminal status is a no-op reporting the actual,
// unchanged state. The terminal cancelled transition is applied by the
// execution task at its next checkpoint, so the returned snapshot may
// still briefly show the session running.
func (m *Manager) Cancel(id string) (domain.Session, error) {
	sess, err := m.store.Get(id)
	if err != nil {
		return domain.Session{}, err
	}
	if sess.Status.Terminal() {
		return sess, nil
	}
	if err := m.store.SignalCancel(id); err != nil {
		return domain.Session{}, err
	}
	m.log.Info("session cancel requested", "session_id", id)
	return m.store.Get(id)
}

// Cleanup removes every terminal session whose end time is older than
// maxAge, returning the count removed. Pending and running sessions
// survive regardless of age.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := m.store.RemoveWhere(func(s domain.Session) bool {
		return s.Status.Terminal() && s.EndTime != nil && s.EndTime.Before(cutoff)
	})
	if removed > 0 {
		m.log.Info("sessions cleaned up", "removed", removed, "max_age", maxAge)
	}
	return removed
}

// Shutdown signals every session to cancel and joins all execution
// tasks, or gives up when ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.store.SignalAll()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) publish(ev domain.Event) {
	if m.pub != nil {
		m.pub.Publish(ev)
	}
}
