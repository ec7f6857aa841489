package repository

import (
	"context"
	"errors"
	"fmt"

	"propstack/catalog/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository stores catalog values in Postgres.
type DocumentRepository interface {
	store.KeyValueStore
	EnsureSchema(ctx context.Context) error
}

type documentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) DocumentRepository {
	return &documentRepository{
		db: db,
	}
}

// EnsureSchema creates the documents table. The column is json, not jsonb,
// so category order survives the round trip.
func (r *documentRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_documents (
		key        TEXT PRIMARY KEY,
		data       JSON NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create catalog_documents: %w", err)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := r.db.QueryRow(ctx, `SELECT data::text FROM catalog_documents WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return []byte(data), nil
}

func (r *documentRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO catalog_documents (key, data, updated_at) 
	VALUES ($1, $2::json, now()) 
	ON CONFLICT (key) 
	DO UPDATE SET data = $2::json, updated_at = now()`
	_, err := r.db.Exec(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM catalog_documents WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}
