package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/worker"
)

type workerOutcome struct {
	result *domain.Result
	err    error
}

// run is the execution task: it owns the full lifecycle of one session
// from pending to a terminal status. Exactly one run goroutine exists
// per session id; the manager joins it at shutdown.
func (m *Manager) run(id, prompt string, opts domain.Options) {
	defer m.wg.Done()

	log := m.log.With("session_id", id)
	cancelCh := m.store.CancelRequested(id)

	// Checkpoint before starting: a cancel that arrived while the
	// session was still pending skips the worker entirely.
	select {
	case <-cancelCh:
		m.finish(id, domain.StatusCancelled, nil, "")
		log.Info("session cancelled before start")
		return
	default:
	}

	now := time.Now()
	if _, err := m.store.Mutate(id, func(sess *domain.Session) {
		sess.Status = domain.StatusRunning
		sess.StartTime = &now
	}); err != nil {
		return
	}
	m.publish(domain.NewStatusEvent(id, domain.StatusRunning))
	log.Info("session running")

	wctx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if m.timeout > 0 {
		// Layered "cancel after duration D": the timer reuses the
		// ordinary cancellation channel rather than a second mechanism.
		timer := time.AfterFunc(m.timeout, func() { _ = m.store.SignalCancel(id) })
		defer timer.Stop()
	}

	msgCh := make(chan domain.Message, 32)
	outCh := make(chan workerOutcome, 1)

	go func() {
		var out workerOutcome
		func() {
			// Worker failures never cross the task boundary; a panic is
			// captured and recorded on the session like any other error.
			defer func() {
				if r := recover(); r != nil {
					out = workerOutcome{err: fmt.Errorf("worker panic: %v", r)}
				}
			}()
			inv := worker.Invocation{SessionID: id, Prompt: prompt, Options: opts}
			res, err := m.worker.Invoke(wctx, inv, func(msg domain.Message) {
				select {
				case msgCh <- msg:
				case <-wctx.Done():
				}
			})
			out = workerOutcome{result: res, err: err}
		}()
		close(msgCh)
		outCh <- out
	}()

	for {
		if msgCh == nil {
			// All relayed output has been applied; only the terminal
			// outcome or a cancellation can arrive now.
			select {
			case <-cancelCh:
				stopWorker()
				m.finish(id, domain.StatusCancelled, nil, "")
				log.Info("session cancelled")
				return
			case out := <-outCh:
				m.settle(id, out, log)
				return
			}
		}

		select {
		case <-cancelCh:
			// Stop relaying worker output and release the worker; any
			// side effects it already performed are not undone.
			stopWorker()
			m.finish(id, domain.StatusCancelled, nil, "")
			log.Info("session cancelled")
			return
		case msg, ok := <-msgCh:
			if !ok {
				msgCh = nil
				continue
			}
			if _, err := m.store.Append(id, msg); err != nil {
				// Record went terminal under our feet (cancel race won).
				return
			}
			m.publish(domain.NewMessageEvent(id, msg))
		}
	}
}

func (m *Manager) settle(id string, out workerOutcome, log *slog.Logger) {
	switch {
	case out.err != nil:
		m.finish(id, domain.StatusError, nil, out.err.Error())
		log.Error("session failed", "error", out.err)
	case out.result != nil:
		m.finish(id, domain.StatusCompleted, out.result, "")
		log.Info("session completed", "duration_ms", out.result.DurationMS)
	default:
		m.finish(id, domain.StatusError, nil, "worker returned neither result nor error")
		log.Error("session failed", "error", "empty worker outcome")
	}
}

// finish applies the terminal transition. Exactly one terminal
// transition occurs per record; a losing racer is silently dropped by
// the store's terminal guard.
func (m *Manager) finish(id string, status domain.Status, result *domain.Result, errMsg string) {
	now := time.Now()
	snap, err := m.store.Mutate(id, func(sess *domain.Session) {
		sess.Status = status
		sess.EndTime = &now
		switch status {
		case domain.StatusCompleted:
			if result.DurationMS == 0 && sess.StartTime != nil {
				result.DurationMS = now.Sub(*sess.StartTime).Milliseconds()
			}
			sess.Result = result
		case domain.StatusError:
			sess.Error = errMsg
		}
	})
	if err != nil {
		return
	}
	m.publish(domain.NewStatusEvent(id, snap.Status))
}
