package repository

import (
	"context"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusCheckRepository persists auxiliary status check records.
type StatusCheckRepository struct {
	db dbtx
}

func NewStatusCheckRepository(pool *pgxpool.Pool) *StatusCheckRepository {
	return &StatusCheckRepository{db: pool}
}

func (r *StatusCheckRepository) Create(ctx context.Context, s *domain.StatusCheck) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO status_checks (id, client_name, created_at) VALUES ($1, $2, $3)`,
		s.ID, s.ClientName, s.CreatedAt,
	)
	return err
}

func (r *StatusCheckRepository) List(ctx context.Context, limit int) ([]*domain.StatusCheck, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, client_name, created_at FROM status_checks ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*domain.StatusCheck
	for rows.Next() {
		var s domain.StatusCheck
		if err := rows.Scan(&s.ID, &s.ClientName, &s.CreatedAt); err != nil {
			return nil, err
		}
		checks = append(checks, &s)
	}
	return checks, rows.Err()
}
