package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user_records (
		owner_id    TEXT        NOT NULL,
		record_name TEXT        NOT NULL,
		fields      JSONB       NOT NULL DEFAULT '{}'::jsonb,
		modified_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (owner_id, record_name)
	)`,
	`CREATE TABLE IF NOT EXISTS saved_flyers (
		id           UUID        PRIMARY KEY,
		user_id      TEXT        NOT NULL,
		project_id   TEXT        NOT NULL,
		category     TEXT        NOT NULL,
		headline     TEXT        NOT NULL DEFAULT '',
		aspect_ratio TEXT        NOT NULL,
		prompt       TEXT        NOT NULL,
		image_key    TEXT        NOT NULL,
		mime         TEXT        NOT NULL,
		bytes        BIGINT      NOT NULL DEFAULT 0,
		credits_used INT         NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS saved_flyers_user_created_idx ON saved_flyers (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS purchase_redemptions (
		transaction_id TEXT        PRIMARY KEY,
		user_id        TEXT        NOT NULL,
		product_id     TEXT        NOT NULL,
		credits        INT         NOT NULL,
		redeemed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// OpenSQL opens a database/sql handle on the lib/pq driver.
func OpenSQL(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB, logger Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.Info().Int("statements", len(schemaStatements)).Msg("schema ensured")
	return nil
}
