package credits

import (
	"context"
	"errors"
	"testing"

	"flygen/internal/infra"
	"flygen/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	available bool
	records   map[string]records.Record
	fetchErr  error
	saveErr   error
	fetches   int
	saves     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{available: true, records: make(map[string]records.Record)}
}

func (f *fakeStore) Available(ctx context.Context) bool { return f.available }

func (f *fakeStore) Fetch(ctx context.Context, name string) (records.Record, error) {
	f.fetches++
	if f.fetchErr != nil {
		return records.Record{}, f.fetchErr
	}
	rec, ok := f.records[name]
	if !ok {
		return records.Record{}, records.ErrRecordNotFound
	}
	return rec, nil
}

func (f *fakeStore) Save(ctx context.Context, rec records.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.records[rec.Name] = rec
	return nil
}

func (f *fakeStore) seedCredits(t *testing.T, v int) {
	t.Helper()
	rec, err := records.NewRecord(records.CreditsRecord, map[string]any{records.FieldCredits: v})
	require.NoError(t, err)
	f.records[records.CreditsRecord] = rec
}

func (f *fakeStore) credits(t *testing.T) int {
	t.Helper()
	rec, ok := f.records[records.CreditsRecord]
	require.True(t, ok, "credits record missing")
	v, ok := rec.Int(records.FieldCredits)
	require.True(t, ok)
	return v
}

func TestSyncRemoteWins(t *testing.T) {
	pairs := []struct{ remote, local int }{
		{0, 0}, {40, 5}, {5, 40}, {0, 12}, {100, 100}, {7, 0},
	}
	for _, p := range pairs {
		store := newFakeStore()
		store.seedCredits(t, p.remote)
		r := NewReconciler(store, infra.NopLogger())
		assert.Equal(t, p.remote, r.Sync(context.Background(), p.local), "remote=%d local=%d", p.remote, p.local)
		assert.Zero(t, store.saves)
	}
}

func TestSyncCreatesMissingRecord(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, infra.NopLogger())

	got := r.Sync(context.Background(), 12)
	assert.Equal(t, 12, got)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 12, store.credits(t))
}

func TestSyncUnavailableIsNoop(t *testing.T) {
	store := newFakeStore()
	store.available = false
	store.seedCredits(t, 40)
	r := NewReconciler(store, infra.NopLogger())

	assert.Equal(t, 5, r.Sync(context.Background(), 5))
	assert.Zero(t, store.fetches)
	assert.Zero(t, store.saves)
}

func TestSyncSwallowsErrors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		store := newFakeStore()
		store.fetchErr = errors.New("network down")
		r := NewReconciler(store, infra.NopLogger())
		res := r.Reconcile(context.Background(), 9, 0)
		assert.Equal(t, 9, res.Credits)
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.Zero(t, store.saves)
	})

	t.Run("create", func(t *testing.T) {
		store := newFakeStore()
		store.saveErr = errors.New("quota")
		r := NewReconciler(store, infra.NopLogger())
		res := r.Reconcile(context.Background(), 9, 0)
		assert.Equal(t, 9, res.Credits)
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.False(t, res.Settled)
	})
}

func TestReconcileAppliesPendingDelta(t *testing.T) {
	tests := []struct {
		name   string
		remote int
		delta  int
		want   int
	}{
		{name: "offline debit", remote: 40, delta: -2, want: 38},
		{name: "offline grant", remote: 10, delta: 25, want: 35},
		{name: "clamped at zero", remote: 1, delta: -3, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.seedCredits(t, tc.remote)
			res := NewReconciler(store, infra.NopLogger()).Reconcile(context.Background(), 999, tc.delta)
			assert.Equal(t, tc.want, res.Credits)
			assert.Equal(t, OutcomeMerged, res.Outcome)
			assert.True(t, res.Settled)
			assert.Equal(t, tc.want, store.credits(t))
		})
	}
}

func TestReconcileMergeWriteFailureKeepsDeltaUnsettled(t *testing.T) {
	store := newFakeStore()
	store.seedCredits(t, 40)
	store.saveErr = errors.New("conflict")
	res := NewReconciler(store, infra.NopLogger()).Reconcile(context.Background(), 8, -2)
	assert.Equal(t, 38, res.Credits)
	assert.False(t, res.Settled)
}

func TestReconcileReseedsNegativeRemote(t *testing.T) {
	for _, delta := range []int{0, -2, 3} {
		store := newFakeStore()
		store.seedCredits(t, -7)
		r := NewReconciler(store, infra.NopLogger())

		res := r.Reconcile(context.Background(), 5, delta)
		assert.Equal(t, 5, res.Credits, "delta=%d", delta)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.True(t, res.Settled)
		assert.Equal(t, 5, store.credits(t))
	}
}
