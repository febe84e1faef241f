package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

const (
	maxLoyer   = 50000
	maxCharges = 10000
)

var (
	villePattern      = regexp.MustCompile(`^[\p{L} '\-]{2,}$`)
	codePostalPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z \-]{1,9}$`)
)

// LogementService coordinates rental-unit CRUD and availability.
type LogementService struct {
	logements     repository.LogementRepository
	souscriptions repository.SouscriptionRepository
	dispatcher    events.Dispatcher
}

// LogementDependencies bundles repositories for the logement service.
type LogementDependencies struct {
	LogementRepo     repository.LogementRepository
	SouscriptionRepo repository.SouscriptionRepository
	Dispatcher       events.Dispatcher
}

// LogementInput describes the create/update payload. MontantTotal is not
// accepted from the caller; it is always recomputed as Loyer + Charges.
type LogementInput struct {
	Titre          string
	Description    string
	Adresse        string
	Ville          string
	CodePostal     string
	Pays           string
	Loyer          float64
	MontantCharges float64
	Statut         *domain.StatutLogement
}

// NewLogementService constructs the service.
func NewLogementService(deps LogementDependencies) *LogementService {
	return &LogementService{
		logements:     deps.LogementRepo,
		souscriptions: deps.SouscriptionRepo,
		dispatcher:    deps.Dispatcher,
	}
}

func validateLogementInput(input LogementInput) map[string]any {
	fieldErrors := map[string]any{}
	if len(strings.TrimSpace(input.Titre)) < 3 {
		fieldErrors["titre"] = "titre must be at least 3 characters"
	}
	if len(strings.TrimSpace(input.Adresse)) < 5 {
		fieldErrors["adresse"] = "adresse must be at least 5 characters"
	}
	if !villePattern.MatchString(strings.TrimSpace(input.Ville)) {
		fieldErrors["ville"] = "ville must contain at least 2 letters"
	}
	if !codePostalPattern.MatchString(strings.TrimSpace(input.CodePostal)) {
		fieldErrors["code_postal"] = "code postal format is invalid"
	}
	if strings.TrimSpace(input.Pays) == "" {
		fieldErrors["pays"] = "pays is required"
	}
	if input.Loyer <= 0 || input.Loyer > maxLoyer {
		fieldErrors["loyer"] = "loyer must be between 0 and 50000 exclusive of zero"
	}
	if input.MontantCharges < 0 || input.MontantCharges > maxCharges {
		fieldErrors["montant_charges"] = "charges must be between 0 and 10000"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// Create validates and persists a new unit. New units start disponible
// unless a valid status is supplied.
func (s *LogementService) Create(ctx context.Context, actor events.Actor, input LogementInput) (*domain.Logement, error) {
	if fieldErrors := validateLogementInput(input); fieldErrors != nil {
		return nil, util.NewValidationError("invalid logement payload", fieldErrors)
	}

	statut := domain.LogementDisponible
	if input.Statut != nil {
		if !domain.ValidStatutLogement(string(*input.Statut)) {
			return nil, util.NewValidationError("invalid logement payload", map[string]any{"statut": "unknown statut"})
		}
		statut = *input.Statut
	}

	logement := &domain.Logement{
		Titre:          strings.TrimSpace(input.Titre),
		Description:    strings.TrimSpace(input.Description),
		Adresse:        strings.TrimSpace(input.Adresse),
		Ville:          strings.TrimSpace(input.Ville),
		CodePostal:     strings.TrimSpace(input.CodePostal),
		Pays:           strings.TrimSpace(input.Pays),
		Loyer:          input.Loyer,
		MontantCharges: input.MontantCharges,
		MontantTotal:   input.Loyer + input.MontantCharges,
		Statut:         statut,
	}
	if err := s.logements.Create(ctx, logement); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLogementCreated,
		SubjectID: logement.ID,
		Actor:     actor,
	})
	return logement, nil
}

// Update validates and rewrites an existing unit, recomputing the total.
func (s *LogementService) Update(ctx context.Context, actor events.Actor, id int64, input LogementInput) (*domain.Logement, error) {
	if fieldErrors := validateLogementInput(input); fieldErrors != nil {
		return nil, util.NewValidationError("invalid logement payload", fieldErrors)
	}

	logement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logement.Titre = strings.TrimSpace(input.Titre)
	logement.Description = strings.TrimSpace(input.Description)
	logement.Adresse = strings.TrimSpace(input.Adresse)
	logement.Ville = strings.TrimSpace(input.Ville)
	logement.CodePostal = strings.TrimSpace(input.CodePostal)
	logement.Pays = strings.TrimSpace(input.Pays)
	logement.Loyer = input.Loyer
	logement.MontantCharges = input.MontantCharges
	logement.MontantTotal = input.Loyer + input.MontantCharges
	if input.Statut != nil {
		if !domain.ValidStatutLogement(string(*input.Statut)) {
			return nil, util.NewValidationError("invalid logement payload", map[string]any{"statut": "unknown statut"})
		}
		logement.Statut = *input.Statut
	}

	if err := s.logements.Update(ctx, logement); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLogementUpdated,
		SubjectID: logement.ID,
		Actor:     actor,
	})
	return logement, nil
}

// ChangerStatut moves a unit between disponible, occupe and maintenance.
func (s *LogementService) ChangerStatut(ctx context.Context, actor events.Actor, id int64, statut domain.StatutLogement) (*domain.Logement, error) {
	if !domain.ValidStatutLogement(string(statut)) {
		return nil, util.NewValidationError("unknown statut", map[string]any{"statut": statut})
	}
	logement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if logement.Statut == statut {
		return logement, nil
	}
	oldStatut := logement.Statut
	logement.Statut = statut
	if err := s.logements.Update(ctx, logement); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLogementStatusChanged,
		SubjectID: logement.ID,
		Actor:     actor,
		Payload: events.LogementStatusChangedPayload{
			OldStatut: oldStatut,
			NewStatut: statut,
		},
	})
	return logement, nil
}

// Delete removes a unit unless a non-terminated subscription still
// references it.
func (s *LogementService) Delete(ctx context.Context, actor events.Actor, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	active, err := s.souscriptions.CountActiveByLogement(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return util.NewConflict("logement has active souscriptions", map[string]any{"active_souscriptions": active})
	}
	if err := s.logements.Delete(ctx, id); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventLogementDeleted,
		SubjectID: id,
		Actor:     actor,
	})
	return nil
}

// GetByID fetches a unit.
func (s *LogementService) GetByID(ctx context.Context, id int64) (*domain.Logement, error) {
	logement, err := s.logements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("logement", map[string]any{"id": id})
		}
		return nil, err
	}
	return logement, nil
}

// List returns units matching the filter.
func (s *LogementService) List(ctx context.Context, filter repository.LogementFilter) ([]domain.Logement, error) {
	return s.logements.ListWithFilter(ctx, filter)
}

// Disponibles returns available units, optionally narrowed by a city
// search term.
func (s *LogementService) Disponibles(ctx context.Context, ville string, limit, offset int) ([]domain.Logement, error) {
	statut := domain.LogementDisponible
	filter := repository.LogementFilter{Statut: &statut, Limit: limit, Offset: offset}
	if strings.TrimSpace(ville) != "" {
		filter.Ville = &ville
	}
	return s.logements.ListWithFilter(ctx, filter)
}

// Stats aggregates unit counts and the occupancy rate.
func (s *LogementService) Stats(ctx context.Context) (*domain.LogementStats, error) {
	counts, err := s.logements.CountByStatut(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.LogementStats{
		Disponibles: counts[domain.LogementDisponible],
		Occupes:     counts[domain.LogementOccupe],
		Maintenance: counts[domain.LogementMaintenance],
	}
	stats.Total = stats.Disponibles + stats.Occupes + stats.Maintenance
	if stats.Total > 0 {
		stats.TauxOccupation = float64(stats.Occupes) / float64(stats.Total) * 100
	}
	return stats, nil
}

func (s *LogementService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
