package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// SouscriptionFilter captures listing parameters for subscriptions.
type SouscriptionFilter struct {
	Statut *domain.StatutSouscription
	Limit  int
	Offset int
}

// SouscriptionRepository encapsulates subscription persistence.
type SouscriptionRepository interface {
	Create(ctx context.Context, souscription *domain.Souscription) error
	Update(ctx context.Context, souscription *domain.Souscription) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Souscription, error)
	GetByReference(ctx context.Context, reference string) (*domain.Souscription, error)
	ListWithFilter(ctx context.Context, filter SouscriptionFilter) ([]domain.Souscription, error)
	CountActiveByLogement(ctx context.Context, logementID int64) (int64, error)
}

type souscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSouscriptionRepository instantiates repository.
func NewSouscriptionRepository(pool *pgxpool.Pool) SouscriptionRepository {
	return &souscriptionRepository{pool: pool}
}

const souscriptionColumns = `id, reference, nom_client, prenom_client, email_client,
               date_naissance_client, ville_naissance_client, pays_naissance_client,
               nationalite_client, pays_destination, date_arrivee_prevue,
               ecole_universite, filiere, pays_ecole, ville_ecole, code_postal_ecole, adresse_ecole,
               logement_id, date_entree_prevue, duree_location_mois,
               statut, created_at, updated_at`

func (r *souscriptionRepository) Create(ctx context.Context, souscription *domain.Souscription) error {
	const query = `
        INSERT INTO souscriptions (reference, nom_client, prenom_client, email_client,
            date_naissance_client, ville_naissance_client, pays_naissance_client,
            nationalite_client, pays_destination, date_arrivee_prevue,
            ecole_universite, filiere, pays_ecole, ville_ecole, code_postal_ecole, adresse_ecole,
            logement_id, date_entree_prevue, duree_location_mois, statut)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		souscription.Reference,
		souscription.NomClient,
		souscription.PrenomClient,
		souscription.EmailClient,
		souscription.DateNaissanceClient,
		souscription.VilleNaissanceClient,
		souscription.PaysNaissanceClient,
		souscription.NationaliteClient,
		souscription.PaysDestination,
		souscription.DateArriveePrevue,
		souscription.EcoleUniversite,
		souscription.Filiere,
		souscription.PaysEcole,
		souscription.VilleEcole,
		souscription.CodePostalEcole,
		souscription.AdresseEcole,
		souscription.LogementID,
		souscription.DateEntreePrevue,
		souscription.DureeLocationMois,
		souscription.Statut,
	).Scan(&souscription.ID, &souscription.CreatedAt)
}

func (r *souscriptionRepository) Update(ctx context.Context, souscription *domain.Souscription) error {
	const query = `
        UPDATE souscriptions SET nom_client=$1, prenom_client=$2, email_client=$3,
            date_naissance_client=$4, ville_naissance_client=$5, pays_naissance_client=$6,
            nationalite_client=$7, pays_destination=$8, date_arrivee_prevue=$9,
            ecole_universite=$10, filiere=$11, pays_ecole=$12, ville_ecole=$13,
            code_postal_ecole=$14, adresse_ecole=$15,
            logement_id=$16, date_entree_prevue=$17, duree_location_mois=$18,
            statut=$19, updated_at=NOW()
        WHERE id=$20`
	cmd, err := r.pool.Exec(ctx, query,
		souscription.NomClient,
		souscription.PrenomClient,
		souscription.EmailClient,
		souscription.DateNaissanceClient,
		souscription.VilleNaissanceClient,
		souscription.PaysNaissanceClient,
		souscription.NationaliteClient,
		souscription.PaysDestination,
		souscription.DateArriveePrevue,
		souscription.EcoleUniversite,
		souscription.Filiere,
		souscription.PaysEcole,
		souscription.VilleEcole,
		souscription.CodePostalEcole,
		souscription.AdresseEcole,
		souscription.LogementID,
		souscription.DateEntreePrevue,
		souscription.DureeLocationMois,
		souscription.Statut,
		souscription.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *souscriptionRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM souscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *souscriptionRepository) GetByID(ctx context.Context, id int64) (*domain.Souscription, error) {
	query := `SELECT ` + souscriptionColumns + ` FROM souscriptions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *souscriptionRepository) GetByReference(ctx context.Context, reference string) (*domain.Souscription, error) {
	query := `SELECT ` + souscriptionColumns + ` FROM souscriptions WHERE reference=$1`
	return r.fetchSingle(ctx, query, reference)
}

func (r *souscriptionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Souscription, error) {
	var s domain.Souscription
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID,
		&s.Reference,
		&s.NomClient,
		&s.PrenomClient,
		&s.EmailClient,
		&s.DateNaissanceClient,
		&s.VilleNaissanceClient,
		&s.PaysNaissanceClient,
		&s.NationaliteClient,
		&s.PaysDestination,
		&s.DateArriveePrevue,
		&s.EcoleUniversite,
		&s.Filiere,
		&s.PaysEcole,
		&s.VilleEcole,
		&s.CodePostalEcole,
		&s.AdresseEcole,
		&s.LogementID,
		&s.DateEntreePrevue,
		&s.DureeLocationMois,
		&s.Statut,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// CountActiveByLogement counts non-terminal subscriptions referencing a
// rental unit. Used to refuse deleting a unit that is still subscribed.
func (r *souscriptionRepository) CountActiveByLogement(ctx context.Context, logementID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM souscriptions WHERE logement_id=$1 AND statut <> $2`
	var count int64
	if err := r.pool.QueryRow(ctx, query, logementID, domain.SouscriptionCloture).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *souscriptionRepository) ListWithFilter(ctx context.Context, filter SouscriptionFilter) ([]domain.Souscription, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Statut != nil {
		args = append(args, *filter.Statut)
		clauses = append(clauses, fmt.Sprintf("statut=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM souscriptions WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		souscriptionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Souscription
	for rows.Next() {
		var s domain.Souscription
		if err := rows.Scan(
			&s.ID,
			&s.Reference,
			&s.NomClient,
			&s.PrenomClient,
			&s.EmailClient,
			&s.DateNaissanceClient,
			&s.VilleNaissanceClient,
			&s.PaysNaissanceClient,
			&s.NationaliteClient,
			&s.PaysDestination,
			&s.DateArriveePrevue,
			&s.EcoleUniversite,
			&s.Filiere,
			&s.PaysEcole,
			&s.VilleEcole,
			&s.CodePostalEcole,
			&s.AdresseEcole,
			&s.LogementID,
			&s.DateEntreePrevue,
			&s.DureeLocationMois,
			&s.Statut,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
