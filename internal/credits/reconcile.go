// Package credits owns the credit balance: the remote reconciliation
// protocol and the per-user ledger that serializes every mutation.
package credits

import (
	"context"
	"errors"

	"flygen/internal/infra"
	"flygen/internal/records"
)

// Outcome labels how a reconciliation resolved.
type Outcome string

const (
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeRemoteWins  Outcome = "remote_wins"
	OutcomeCreated     Outcome = "created"
	OutcomeMerged      Outcome = "merged"
	OutcomeFailed      Outcome = "failed"
)

// Result is the resolved balance plus whether the local delta reached the
// remote record.
type Result struct {
	Credits int
	Outcome Outcome
	Settled bool
}

// Reconciler resolves a local balance against the remote credits record.
type Reconciler struct {
	remote records.Store
	logger infra.Logger
}

func NewReconciler(remote records.Store, logger infra.Logger) *Reconciler {
	return &Reconciler{remote: remote, logger: logger}
}

// Sync returns the authoritative balance for local. When the remote store
// is unavailable or errors, local is returned unchanged. A missing remote
// record is created from local. Otherwise the remote value wins.
func (r *Reconciler) Sync(ctx context.Context, local int) int {
	return r.Reconcile(ctx, local, 0).Credits
}

// Reconcile is Sync with a pending local delta that has not been pushed
// yet. The delta is applied on top of the remote value and written back so
// offline debits and grants are not overwritten.
func (r *Reconciler) Reconcile(ctx context.Context, local, delta int) Result {
	if !r.remote.Available(ctx) {
		return Result{Credits: local, Outcome: OutcomeUnavailable}
	}

	rec, err := r.remote.Fetch(ctx, records.CreditsRecord)
	switch {
	case errors.Is(err, records.ErrRecordNotFound):
		if err := r.write(ctx, local); err != nil {
			r.logger.Warn().Err(err).Msg("credits: create remote record")
			return Result{Credits: local, Outcome: OutcomeFailed}
		}
		return Result{Credits: local, Outcome: OutcomeCreated, Settled: true}
	case err != nil:
		r.logger.Warn().Err(err).Msg("credits: fetch remote record")
		return Result{Credits: local, Outcome: OutcomeFailed}
	}

	remote, ok := rec.Int(records.FieldCredits)
	if !ok || remote < 0 {
		// Unreadable or negative attribute: reseed from local.
		if err := r.write(ctx, local); err != nil {
			r.logger.Warn().Err(err).Msg("credits: repair remote record")
			return Result{Credits: local, Outcome: OutcomeFailed}
		}
		return Result{Credits: local, Outcome: OutcomeCreated, Settled: true}
	}
	if delta == 0 {
		return Result{Credits: remote, Outcome: OutcomeRemoteWins, Settled: true}
	}

	merged := remote + delta
	if merged < 0 {
		merged = 0
	}
	if err := r.write(ctx, merged); err != nil {
		r.logger.Warn().Err(err).Int("delta", delta).Msg("credits: push delta")
		return Result{Credits: merged, Outcome: OutcomeMerged}
	}
	return Result{Credits: merged, Outcome: OutcomeMerged, Settled: true}
}

func (r *Reconciler) write(ctx context.Context, credits int) error {
	rec, err := records.NewRecord(records.CreditsRecord, map[string]any{records.FieldCredits: credits})
	if err != nil {
		return err
	}
	return r.remote.Save(ctx, rec)
}
