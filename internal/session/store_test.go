package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

func TestCreateAndGet(t *testing.T) {
	s := NewStore()
	sess := s.Create("hello", domain.Options{Model: "m"})

	require.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.StatusPending, sess.Status)
	assert.Equal(t, "hello", sess.Prompt)
	assert.NotNil(t, sess.Messages)
	assert.Empty(t, sess.Messages)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "m", got.Options.Model)
}

func TestGetNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := NewStore()
	sess := s.Create("hi", domain.Options{})
	_, err := s.Append(sess.ID, domain.NewTextMessage(domain.MessageTypeAssistant, "a"))
	require.NoError(t, err)

	snap, err := s.Get(sess.ID)
	require.NoError(t, err)
	snap.Messages[0] = domain.NewTextMessage(domain.MessageTypeAssistant, "tampered")
	snap.Status = domain.StatusError

	again, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)

	var payload domain.TextPayload
	require.NoError(t, unmarshalPayload(again.Messages[0], &payload))
	assert.Equal(t, "a", payload.Text)
}

func TestMutateTerminalGuard(t *testing.T) {
	s := NewStore()
	sess := s.Create("hi", domain.Options{})

	_, err := s.Mutate(sess.ID, func(sess *domain.Session) {
		sess.Status = domain.StatusCompleted
	})
	require.NoError(t, err)

	snap, err := s.Mutate(sess.ID, func(sess *domain.Session) {
		sess.Status = domain.StatusCancelled
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	assert.Equal(t, domain.StatusCompleted, snap.Status)

	_, err = s.Append(sess.ID, domain.NewTextMessage(domain.MessageTypeAssistant, "late"))
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestAppendPreservesOrder(t *testing.T) {
	s := NewStore()
	sess := s.Create("hi", domain.Options{})

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.Append(sess.ID, domain.NewTextMessage(domain.MessageTypeAssistant, text))
		require.NoError(t, err)
	}

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	for i, want := range []string{"one", "two", "three"} {
		var payload domain.TextPayload
		require.NoError(t, unmarshalPayload(got.Messages[i], &payload))
		assert.Equal(t, want, payload.Text)
	}
}

func TestRemoveWhere(t *testing.T) {
	s := NewStore()
	old := s.Create("old", domain.Options{})
	fresh := s.Create("fresh", domain.Options{})

	past := time.Now().Add(-time.Hour)
	_, err := s.Mutate(old.ID, func(sess *domain.Session) {
		sess.Status = domain.StatusCompleted
		sess.EndTime = &past
	})
	require.NoError(t, err)

	removed := s.RemoveWhere(func(sess domain.Session) bool {
		return sess.Status.Terminal()
	})
	assert.Equal(t, 1, removed)

	_, err = s.Get(old.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSignalCancelIdempotent(t *testing.T) {
	s := NewStore()
	sess := s.Create("hi", domain.Options{})

	require.NoError(t, s.SignalCancel(sess.ID))
	require.NoError(t, s.SignalCancel(sess.ID))

	select {
	case <-s.CancelRequested(sess.ID):
	default:
		t.Fatal("cancel channel not closed")
	}

	assert.ErrorIs(t, s.SignalCancel("nope"), domain.ErrSessionNotFound)
}

func TestConcurrentAppendAndGet(t *testing.T) {
	s := NewStore()
	sess := s.Create("hi", domain.Options{})

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, _ = s.Append(sess.ID, domain.NewTextMessage(domain.MessageTypeAssistant, "x"))
				_, _ = s.Get(sess.ID)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers*perWriter)
}

func TestListSummaries(t *testing.T) {
	s := NewStore()
	a := s.Create("first", domain.Options{})
	s.Create("second", domain.Options{})
	_, err := s.Append(a.ID, domain.NewTextMessage(domain.MessageTypeAssistant, "m"))
	require.NoError(t, err)

	summaries := s.List()
	require.Len(t, summaries, 2)
	for _, sum := range summaries {
		if sum.ID == a.ID {
			assert.Equal(t, 1, sum.MessageCount)
			assert.Equal(t, "first", sum.Prompt)
		}
	}
}
