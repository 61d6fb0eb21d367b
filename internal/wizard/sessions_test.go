package wizard

import (
	"sync"
	"testing"
	"time"

	"flygen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsOwnerScoping(t *testing.T) {
	s := NewSessions(domain.DefaultCatalog(), time.Hour, 0)
	id, err := s.Create("alice")
	require.NoError(t, err)

	err = s.With(id, "bob", func(w *Wizard) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = s.With(id, "alice", func(w *Wizard) error {
		return w.SelectCategory(domain.CategoryEvent)
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(id, "bob"), ErrSessionNotFound)
	require.NoError(t, s.Delete(id, "alice"))
	assert.Equal(t, 0, s.Len())
}

func TestSessionsLimit(t *testing.T) {
	s := NewSessions(domain.DefaultCatalog(), time.Hour, 2)
	_, err := s.Create("alice")
	require.NoError(t, err)
	_, err = s.Create("alice")
	require.NoError(t, err)
	_, err = s.Create("alice")
	assert.ErrorIs(t, err, ErrTooManySessions)
	_, err = s.Create("bob")
	assert.NoError(t, err)
}

func TestSessionsSweep(t *testing.T) {
	s := NewSessions(domain.DefaultCatalog(), time.Minute, 0)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }

	stale, err := s.Create("alice")
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	fresh, err := s.Create("alice")
	require.NoError(t, err)

	assert.Equal(t, 1, s.Sweep())
	assert.ErrorIs(t, s.With(stale, "alice", func(*Wizard) error { return nil }), ErrSessionNotFound)
	assert.NoError(t, s.With(fresh, "alice", func(*Wizard) error { return nil }))
}

func TestSessionsSerializeAccess(t *testing.T) {
	s := NewSessions(domain.DefaultCatalog(), time.Hour, 0)
	id, err := s.Create("alice")
	require.NoError(t, err)
	require.NoError(t, s.With(id, "alice", func(w *Wizard) error {
		return w.SelectCategory(domain.CategoryAnnouncement)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With(id, "alice", func(w *Wizard) error {
				return w.UpdateProject(func(p *domain.Project) error {
					p.Text[domain.FieldBodyText] += "x"
					return nil
				})
			})
		}()
	}
	wg.Wait()

	require.NoError(t, s.With(id, "alice", func(w *Wizard) error {
		assert.Len(t, w.Project().Text[domain.FieldBodyText], 50)
		return nil
	}))
}
