package wizard

import (
	"sync"
	"time"

	"flygen/internal/domain"

	"github.com/google/uuid"
)

type session struct {
	mu      sync.Mutex
	owner   string
	wizard  *Wizard
	touched time.Time
}

// Sessions is the in-process registry of wizard instances keyed by session
// id. Calls on one session run one at a time.
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	catalog domain.Catalog
	ttl     time.Duration
	maxPer  int
	nowFunc func() time.Time
}

func NewSessions(catalog domain.Catalog, ttl time.Duration, maxPerOwner int) *Sessions {
	return &Sessions{
		items:   make(map[string]*session),
		catalog: catalog,
		ttl:     ttl,
		maxPer:  maxPerOwner,
		nowFunc: time.Now,
	}
}

// Create starts a new wizard owned by owner and returns its id.
func (s *Sessions) Create(owner string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxPer > 0 {
		count := 0
		for _, sess := range s.items {
			if sess.owner == owner {
				count++
			}
		}
		if count >= s.maxPer {
			return "", ErrTooManySessions
		}
	}
	id := uuid.NewString()
	s.items[id] = &session{owner: owner, wizard: New(s.catalog), touched: s.nowFunc()}
	return id, nil
}

// With runs fn against the session's wizard while holding its lock.
func (s *Sessions) With(id, owner string, fn func(w *Wizard) error) error {
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if !ok || sess.owner != owner {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.nowFunc()
	return fn(sess.wizard)
}

func (s *Sessions) Delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok || sess.owner != owner {
		return ErrSessionNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than the configured ttl and returns
// how many were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.nowFunc().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.items {
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}
