package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flygen/internal/infra"
	"flygen/internal/sqlinline"

	"github.com/jackc/pgx/v5"
)

// PostgresBackend keeps records in the user_records table.
type PostgresBackend struct {
	sql infra.SQLExecutor
}

func NewPostgresBackend(sql infra.SQLExecutor) *PostgresBackend {
	return &PostgresBackend{sql: sql}
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	var one int
	if err := b.sql.QueryRow(ctx, sqlinline.QPingRecords).Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, owner, name string) (Record, error) {
	var (
		fields   []byte
		modified time.Time
	)
	err := b.sql.QueryRow(ctx, sqlinline.QGetRecord, owner, name).Scan(&fields, &modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("records: get %s: %w", name, err)
	}
	return Record{Name: name, Fields: fields, ModifiedAt: modified}, nil
}

func (b *PostgresBackend) Put(ctx context.Context, owner string, rec Record) error {
	var modified time.Time
	if err := b.sql.QueryRow(ctx, sqlinline.QUpsertRecord, owner, rec.Name, []byte(rec.Fields)).Scan(&modified); err != nil {
		return fmt.Errorf("records: put %s: %w", rec.Name, err)
	}
	return nil
}

var _ Backend = (*PostgresBackend)(nil)
