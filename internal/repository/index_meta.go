package repository

import (
	"context"
	"errors"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexMetaRepository handles index-wide metadata.
type IndexMetaRepository struct {
	db dbtx
}

func NewIndexMetaRepository(pool *pgxpool.Pool) *IndexMetaRepository {
	return &IndexMetaRepository{db: pool}
}

func NewIndexMetaRepositoryWithTx(tx pgx.Tx) *IndexMetaRepository {
	return &IndexMetaRepository{db: tx}
}

func (r *IndexMetaRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM index_meta WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrMetaKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *IndexMetaRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO index_meta (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`,
		key, value, time.Now().UTC(),
	)
	return err
}

func (r *IndexMetaRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM index_meta WHERE key = $1`, key)
	return err
}
