package credits

import (
	"sync"
	"time"

	"flygen/internal/infra"
	"flygen/internal/profile"
	"flygen/internal/records"
)

// Registry hands out one Ledger per user so every caller shares the same
// lock for that user's balance.
type Registry struct {
	mu       sync.Mutex
	ledgers  map[string]*Ledger
	profiles profile.Store
	backend  records.Backend
	logger   infra.Logger
	onSync   func(Outcome)
}

// NewRegistry builds a registry. backend may be nil, in which case the
// remote store is always unavailable and balances stay local.
func NewRegistry(profiles profile.Store, backend records.Backend, logger infra.Logger, onSync func(Outcome)) *Registry {
	return &Registry{
		ledgers:  make(map[string]*Ledger),
		profiles: profiles,
		backend:  backend,
		logger:   logger,
		onSync:   onSync,
	}
}

// For returns the ledger owned by userID.
func (r *Registry) For(userID string) *Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[userID]; ok {
		return l
	}
	remote := records.ForOwner(r.backend, userID)
	l := &Ledger{
		userID:      userID,
		profiles:    r.profiles,
		remote:      remote,
		reconciler:  NewReconciler(remote, r.logger),
		logger:      r.logger,
		onSync:      r.onSync,
		pushTimeout: defaultPushTimeout,
	}
	r.ledgers[userID] = l
	return l
}

// Wait blocks until every ledger's background pushes have finished.
func (r *Registry) Wait() {
	r.mu.Lock()
	ledgers := make([]*Ledger, 0, len(r.ledgers))
	for _, l := range r.ledgers {
		ledgers = append(ledgers, l)
	}
	r.mu.Unlock()
	for _, l := range ledgers {
		l.Wait()
	}
}

// NewLedger builds a standalone ledger around an explicit remote store.
func NewLedger(userID string, profiles profile.Store, remote records.Store, logger infra.Logger, pushTimeout time.Duration) *Ledger {
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}
	return &Ledger{
		userID:      userID,
		profiles:    profiles,
		remote:      remote,
		reconciler:  NewReconciler(remote, logger),
		logger:      logger,
		pushTimeout: pushTimeout,
	}
}
