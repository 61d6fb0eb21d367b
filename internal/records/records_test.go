package records

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

type stubSQL struct {
	queries []string
	args    [][]any
	row     func(query string, args []any) pgx.Row
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	return s.row(query, args)
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func TestRecordAccessors(t *testing.T) {
	rec, err := NewRecord(PreferencesRecord, map[string]any{
		FieldPreferredCategories: []string{"event", "salePromo"},
		FieldCredits:             12,
	})
	require.NoError(t, err)

	credits, ok := rec.Int(FieldCredits)
	assert.True(t, ok)
	assert.Equal(t, 12, credits)

	cats, ok := rec.Strings(FieldPreferredCategories)
	assert.True(t, ok)
	assert.Equal(t, []string{"event", "salePromo"}, cats)

	_, ok = rec.Int("missing")
	assert.False(t, ok)
	_, ok = rec.Strings(FieldCredits)
	assert.False(t, ok)
}

func TestForOwnerWithoutOwnerIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := ForOwner(NewMemoryBackend(), "")
	assert.False(t, store.Available(ctx))
	_, err := store.Fetch(ctx, CreditsRecord)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Save(ctx, Record{Name: CreditsRecord}), ErrUnavailable)

	assert.False(t, ForOwner(nil, "alice").Available(ctx))
}

func TestMemoryBackendScopesOwners(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	alice := ForOwner(backend, "alice")
	bob := ForOwner(backend, "bob")

	rec, err := NewRecord(CreditsRecord, map[string]any{FieldCredits: 7})
	require.NoError(t, err)
	require.NoError(t, alice.Save(ctx, rec))

	got, err := alice.Fetch(ctx, CreditsRecord)
	require.NoError(t, err)
	v, _ := got.Int(FieldCredits)
	assert.Equal(t, 7, v)

	_, err = bob.Fetch(ctx, CreditsRecord)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	backend.SetOffline(true)
	assert.False(t, alice.Available(ctx))
}

func TestPostgresBackendGet(t *testing.T) {
	ctx := context.Background()
	modified := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sql := &stubSQL{row: func(query string, args []any) pgx.Row {
		return stubRow{scan: func(dest ...any) error {
			*dest[0].(*[]byte) = []byte(`{"credits":40}`)
			*dest[1].(*time.Time) = modified
			return nil
		}}
	}}
	backend := NewPostgresBackend(sql)

	rec, err := backend.Get(ctx, "alice", CreditsRecord)
	require.NoError(t, err)
	v, ok := rec.Int(FieldCredits)
	assert.True(t, ok)
	assert.Equal(t, 40, v)
	assert.Equal(t, modified, rec.ModifiedAt)
	require.Len(t, sql.queries, 1)
	assert.True(t, strings.HasPrefix(sql.queries[0], "--sql "))
	assert.Equal(t, []any{"alice", CreditsRecord}, sql.args[0])
}

func TestPostgresBackendGetNotFound(t *testing.T) {
	sql := &stubSQL{row: func(string, []any) pgx.Row {
		return stubRow{scan: func(...any) error { return pgx.ErrNoRows }}
	}}
	_, err := NewPostgresBackend(sql).Get(context.Background(), "alice", CreditsRecord)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPostgresBackendPingFailure(t *testing.T) {
	sql := &stubSQL{row: func(string, []any) pgx.Row {
		return stubRow{scan: func(...any) error { return errors.New("connection refused") }}
	}}
	err := NewPostgresBackend(sql).Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPostgresBackendPut(t *testing.T) {
	sql := &stubSQL{row: func(string, []any) pgx.Row {
		return stubRow{scan: func(dest ...any) error {
			*dest[0].(*time.Time) = time.Now()
			return nil
		}}
	}}
	rec, err := NewRecord(CreditsRecord, map[string]any{FieldCredits: 12})
	require.NoError(t, err)
	require.NoError(t, NewPostgresBackend(sql).Put(context.Background(), "alice", rec))
	require.Len(t, sql.args, 1)
	assert.Equal(t, "alice", sql.args[0][0])
	assert.Equal(t, CreditsRecord, sql.args[0][1])
	assert.JSONEq(t, `{"credits":12}`, string(sql.args[0][2].([]byte)))
}

func TestRedisBackendUnreachable(t *testing.T) {
	client := NewRedisClient("127.0.0.1:1", "", 0)
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store := ForOwner(NewRedisBackend(client), "alice")
	assert.False(t, store.Available(ctx))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "flygen:records:alice:user-credits-record", redisKey("alice", CreditsRecord))
}
