package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// LogementFilter captures listing parameters for rental units.
type LogementFilter struct {
	Statut *domain.StatutLogement
	Ville  *string
	Limit  int
	Offset int
}

// LogementRepository encapsulates rental unit persistence.
type LogementRepository interface {
	Create(ctx context.Context, logement *domain.Logement) error
	Update(ctx context.Context, logement *domain.Logement) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Logement, error)
	ListWithFilter(ctx context.Context, filter LogementFilter) ([]domain.Logement, error)
	CountByStatut(ctx context.Context) (map[domain.StatutLogement]int64, error)
}

type logementRepository struct {
	pool *pgxpool.Pool
}

// NewLogementRepository instantiates repository.
func NewLogementRepository(pool *pgxpool.Pool) LogementRepository {
	return &logementRepository{pool: pool}
}

const logementColumns = `id, titre, description, adresse, ville, code_postal, pays,
               loyer, montant_charges, montant_total, statut, created_at, updated_at`

func (r *logementRepository) Create(ctx context.Context, logement *domain.Logement) error {
	const query = `
        INSERT INTO logements (titre, description, adresse, ville, code_postal, pays, loyer, montant_charges, montant_total, statut)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		logement.Titre,
		logement.Description,
		logement.Adresse,
		logement.Ville,
		logement.CodePostal,
		logement.Pays,
		logement.Loyer,
		logement.MontantCharges,
		logement.MontantTotal,
		logement.Statut,
	).Scan(&logement.ID, &logement.CreatedAt)
}

func (r *logementRepository) Update(ctx context.Context, logement *domain.Logement) error {
	const query = `
        UPDATE logements SET titre=$1, description=$2, adresse=$3, ville=$4, code_postal=$5, pays=$6,
            loyer=$7, montant_charges=$8, montant_total=$9, statut=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		logement.Titre,
		logement.Description,
		logement.Adresse,
		logement.Ville,
		logement.CodePostal,
		logement.Pays,
		logement.Loyer,
		logement.MontantCharges,
		logement.MontantTotal,
		logement.Statut,
		logement.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *logementRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM logements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *logementRepository) GetByID(ctx context.Context, id int64) (*domain.Logement, error) {
	query := `SELECT ` + logementColumns + ` FROM logements WHERE id=$1`
	var logement domain.Logement
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&logement.ID,
		&logement.Titre,
		&logement.Description,
		&logement.Adresse,
		&logement.Ville,
		&logement.CodePostal,
		&logement.Pays,
		&logement.Loyer,
		&logement.MontantCharges,
		&logement.MontantTotal,
		&logement.Statut,
		&logement.CreatedAt,
		&logement.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &logement, nil
}

func (r *logementRepository) ListWithFilter(ctx context.Context, filter LogementFilter) ([]domain.Logement, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Statut != nil {
		args = append(args, *filter.Statut)
		clauses = append(clauses, fmt.Sprintf("statut=$%d", len(args)))
	}
	if filter.Ville != nil && strings.TrimSpace(*filter.Ville) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Ville))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(ville) LIKE $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM logements WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		logementColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Logement
	for rows.Next() {
		var logement domain.Logement
		if err := rows.Scan(
			&logement.ID,
			&logement.Titre,
			&logement.Description,
			&logement.Adresse,
			&logement.Ville,
			&logement.CodePostal,
			&logement.Pays,
			&logement.Loyer,
			&logement.MontantCharges,
			&logement.MontantTotal,
			&logement.Statut,
			&logement.CreatedAt,
			&logement.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, logement)
	}
	return result, rows.Err()
}

func (r *logementRepository) CountByStatut(ctx context.Context) (map[domain.StatutLogement]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT statut, COUNT(*) FROM logements GROUP BY statut`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.StatutLogement]int64)
	for rows.Next() {
		var statut domain.StatutLogement
		var count int64
		if err := rows.Scan(&statut, &count); err != nil {
			return nil, err
		}
		counts[statut] = count
	}
	return counts, rows.Err()
}
