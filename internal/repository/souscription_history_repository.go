package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// SouscriptionHistoryRepository stores status-change audit entries.
type SouscriptionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.SouscriptionHistory) error
	ListBySouscription(ctx context.Context, souscriptionID int64, limit, offset int) ([]domain.SouscriptionHistory, error)
}

type souscriptionHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewSouscriptionHistoryRepository instantiates repository.
func NewSouscriptionHistoryRepository(pool *pgxpool.Pool) SouscriptionHistoryRepository {
	return &souscriptionHistoryRepository{pool: pool}
}

func (r *souscriptionHistoryRepository) Create(ctx context.Context, entry *domain.SouscriptionHistory) error {
	const query = `
        INSERT INTO souscription_history (souscription_id, old_statut, new_statut, changed_by_email, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.SouscriptionID,
		entry.OldStatut,
		entry.NewStatut,
		entry.ChangedByEmail,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *souscriptionHistoryRepository) ListBySouscription(ctx context.Context, souscriptionID int64, limit, offset int) ([]domain.SouscriptionHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, souscription_id, old_statut, new_statut, changed_by_email, comment, created_at
        FROM souscription_history
        WHERE souscription_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, souscriptionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SouscriptionHistory
	for rows.Next() {
		var entry domain.SouscriptionHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.SouscriptionID,
			&entry.OldStatut,
			&entry.NewStatut,
			&entry.ChangedByEmail,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
