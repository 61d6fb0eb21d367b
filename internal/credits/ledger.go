package credits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flygen/internal/domain"
	"flygen/internal/infra"
	"flygen/internal/profile"
	"flygen/internal/records"
)

var ErrInvalidAmount = errors.New("credits: amount must be positive")

const defaultPushTimeout = 10 * time.Second

// Ledger is the single owner of one user's profile. Sync, Deduct and Grant
// take the same lock, so a background push can never interleave with a
// local mutation.
type Ledger struct {
	mu          sync.Mutex
	userID      string
	profiles    profile.Store
	remote      records.Store
	reconciler  *Reconciler
	logger      infra.Logger
	onSync      func(Outcome)
	pushTimeout time.Duration
	pending     sync.WaitGroup
}

// Balance is a snapshot returned by ledger operations.
type Balance struct {
	Credits       int       `json:"credits"`
	UnsyncedDelta int       `json:"unsynced_delta"`
	LastSyncedAt  time.Time `json:"last_synced_at,omitempty"`
	Outcome       Outcome   `json:"outcome,omitempty"`
}

func balanceOf(p *profile.Profile, outcome Outcome) Balance {
	return Balance{Credits: p.Credits, UnsyncedDelta: p.UnsyncedDelta, LastSyncedAt: p.LastSyncedAt, Outcome: outcome}
}

func (l *Ledger) UserID() string { return l.userID }

// Balance returns the local balance without touching the remote store.
func (l *Ledger) Balance(ctx context.Context) (Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		return Balance{}, err
	}
	return balanceOf(p, ""), nil
}

// Profile returns a copy of the stored profile.
func (l *Ledger) Profile(ctx context.Context) (*profile.Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profiles.Load(ctx, l.userID)
}

// Sync reconciles the local balance with the remote record. Remote errors
// never fail the call; only local persistence errors do.
func (l *Ledger) Sync(ctx context.Context) (Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.syncLocked(ctx)
}

func (l *Ledger) syncLocked(ctx context.Context) (Balance, error) {
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		return Balance{}, err
	}
	res := l.reconciler.Reconcile(ctx, p.Credits, p.UnsyncedDelta)
	if l.onSync != nil {
		l.onSync(res.Outcome)
	}
	if res.Outcome == OutcomeUnavailable || res.Outcome == OutcomeFailed {
		return balanceOf(p, res.Outcome), nil
	}
	p.Credits = res.Credits
	if res.Settled {
		p.UnsyncedDelta = 0
		p.LastSyncedAt = time.Now().UTC()
	}
	if err := l.profiles.Save(ctx, p); err != nil {
		return Balance{}, err
	}
	l.logger.Debug().Str("user_id", l.userID).Str("outcome", string(res.Outcome)).Int("credits", p.Credits).Msg("credits synced")
	return balanceOf(p, res.Outcome), nil
}

// Deduct debits n credits locally and pushes the change to the remote
// record in the background.
func (l *Ledger) Deduct(ctx context.Context, n int) (Balance, error) {
	if n <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	return l.apply(ctx, -n)
}

// Grant credits n locally and pushes the change in the background.
func (l *Ledger) Grant(ctx context.Context, n int) (Balance, error) {
	if n <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	return l.apply(ctx, n)
}

func (l *Ledger) apply(ctx context.Context, delta int) (Balance, error) {
	l.mu.Lock()
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		l.mu.Unlock()
		return Balance{}, err
	}
	if p.Credits+delta < 0 {
		l.mu.Unlock()
		return balanceOf(p, ""), fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientCredits, p.Credits, -delta)
	}
	p.Credits += delta
	p.UnsyncedDelta += delta
	if err := l.profiles.Save(ctx, p); err != nil {
		l.mu.Unlock()
		return Balance{}, err
	}
	out := balanceOf(p, "")
	l.mu.Unlock()

	l.push()
	return out, nil
}

// push runs a sync detached from the caller's context.
func (l *Ledger) push() {
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.pushTimeout)
		defer cancel()
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, err := l.syncLocked(ctx); err != nil {
			l.logger.Warn().Err(err).Str("user_id", l.userID).Msg("credits: background push")
		}
	}()
}

// Wait blocks until background pushes started so far have finished.
func (l *Ledger) Wait() {
	l.pending.Wait()
}

// SyncPreferences reconciles preferred categories with the remote
// preferences record using the same remote-wins protocol.
func (l *Ledger) SyncPreferences(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		return nil, err
	}
	if !l.remote.Available(ctx) {
		return p.PreferredCategories, nil
	}
	rec, err := l.remote.Fetch(ctx, records.PreferencesRecord)
	switch {
	case errors.Is(err, records.ErrRecordNotFound):
		if err := l.writePreferences(ctx, p.PreferredCategories); err != nil {
			l.logger.Warn().Err(err).Msg("credits: create preferences record")
		}
		return p.PreferredCategories, nil
	case err != nil:
		l.logger.Warn().Err(err).Msg("credits: fetch preferences record")
		return p.PreferredCategories, nil
	}
	remote, ok := rec.Strings(records.FieldPreferredCategories)
	if !ok {
		return p.PreferredCategories, nil
	}
	p.PreferredCategories = remote
	if err := l.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return remote, nil
}

// SetPreferences stores categories locally and writes them to the remote
// preferences record best-effort.
func (l *Ledger) SetPreferences(ctx context.Context, categories []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		return err
	}
	p.PreferredCategories = append([]string(nil), categories...)
	if err := l.profiles.Save(ctx, p); err != nil {
		return err
	}
	if l.remote.Available(ctx) {
		if err := l.writePreferences(ctx, categories); err != nil {
			l.logger.Warn().Err(err).Msg("credits: write preferences record")
		}
	}
	return nil
}

// RecordRedemption marks transactionID as granted and credits n in one
// locked step. It reports false when the transaction was already redeemed.
func (l *Ledger) RecordRedemption(ctx context.Context, transactionID string, n int, subscription string, expires time.Time) (Balance, bool, error) {
	if n <= 0 {
		return Balance{}, false, ErrInvalidAmount
	}
	l.mu.Lock()
	p, err := l.profiles.Load(ctx, l.userID)
	if err != nil {
		l.mu.Unlock()
		return Balance{}, false, err
	}
	if p.HasRedeemed(transactionID) {
		l.mu.Unlock()
		return balanceOf(p, ""), false, nil
	}
	p.RedeemedTransactions = append(p.RedeemedTransactions, transactionID)
	p.Credits += n
	p.UnsyncedDelta += n
	if subscription != "" {
		p.SubscriptionProduct = subscription
		p.SubscriptionExpires = expires
	}
	if err := l.profiles.Save(ctx, p); err != nil {
		l.mu.Unlock()
		return Balance{}, false, err
	}
	out := balanceOf(p, "")
	l.mu.Unlock()
	return out, true, nil
}

func (l *Ledger) writePreferences(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	rec, err := records.NewRecord(records.PreferencesRecord, map[string]any{records.FieldPreferredCategories: categories})
	if err != nil {
		return err
	}
	return l.remote.Save(ctx, rec)
}
