package flyers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"flygen/internal/domain"
	"flygen/internal/infra"
	"flygen/internal/sqlinline"
	"flygen/internal/storage"

	"github.com/jackc/pgx/v5"
)

// PostgresRepository keeps saved flyer metadata in the saved_flyers table.
type PostgresRepository struct {
	sql infra.SQLExecutor
}

func NewPostgresRepository(sql infra.SQLExecutor) *PostgresRepository {
	return &PostgresRepository{sql: sql}
}

func (r *PostgresRepository) Create(ctx context.Context, f *domain.SavedFlyer) error {
	err := r.sql.QueryRow(ctx, sqlinline.QInsertSavedFlyer,
		f.ID, f.UserID, f.ProjectID, string(f.Category), f.Headline, f.AspectRatio,
		f.Prompt, f.ImageKey, f.MIME, f.Bytes, f.CreditsUsed,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("flyers: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SavedFlyer, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListSavedFlyers, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("flyers: list: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedFlyer
	for rows.Next() {
		var f domain.SavedFlyer
		if err := scanFlyer(rows, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*domain.SavedFlyer, error) {
	var f domain.SavedFlyer
	err := scanFlyer(r.sql.QueryRow(ctx, sqlinline.QGetSavedFlyer, userID, id), &f)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteSavedFlyer, userID, id)
	if err != nil {
		return fmt.Errorf("flyers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFlyer(row pgx.Row, f *domain.SavedFlyer) error {
	var category string
	if err := row.Scan(&f.ID, &f.UserID, &f.ProjectID, &category, &f.Headline, &f.AspectRatio,
		&f.Prompt, &f.ImageKey, &f.MIME, &f.Bytes, &f.CreditsUsed, &f.CreatedAt); err != nil {
		return err
	}
	f.Category = domain.Category(category)
	return nil
}

// FileRepository keeps one JSON index per user in the file store. It backs
// the gallery when no database is configured.
type FileRepository struct {
	mu    sync.Mutex
	files *storage.FileStore
}

func NewFileRepository(files *storage.FileStore) *FileRepository {
	return &FileRepository{files: files}
}

func indexKey(userID string) string {
	return storage.UserKey(userID, "flyers", "index.json")
}

func (r *FileRepository) load(ctx context.Context, userID string) ([]domain.SavedFlyer, error) {
	data, err := r.files.Read(ctx, indexKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []domain.SavedFlyer
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("flyers: decode index: %w", err)
	}
	return items, nil
}

func (r *FileRepository) store(ctx context.Context, userID string, items []domain.SavedFlyer) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.files.Write(ctx, indexKey(userID), data)
	return err
}

func (r *FileRepository) Create(ctx context.Context, f *domain.SavedFlyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.load(ctx, f.UserID)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.ID == f.ID {
			return domain.ErrDuplicateOperation
		}
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	items = append(items, *f)
	return r.store(ctx, f.UserID, items)
}

func (r *FileRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SavedFlyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *FileRepository) GetByID(ctx context.Context, userID, id string) (*domain.SavedFlyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			f := items[i]
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *FileRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return r.store(ctx, userID, items)
		}
	}
	return domain.ErrNotFound
}

var (
	_ domain.FlyerRepository = (*PostgresRepository)(nil)
	_ domain.FlyerRepository = (*FileRepository)(nil)
)
