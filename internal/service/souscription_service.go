package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/boaz-housing/internal/catalog"
	"github.com/spec-kit/boaz-housing/internal/document"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/internal/upload"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

const defaultDureeLocationMois = 12

// ProformaSender delivers a generated proforma to the client mailbox.
type ProformaSender interface {
	SendProformaEmail(ctx context.Context, to, reference string, pdf []byte) error
}

// SouscriptionService coordinates the subscription workflow: creation,
// edits, the payer/livrer actions, document generation and deletion.
type SouscriptionService struct {
	souscriptions repository.SouscriptionRepository
	logements     repository.LogementRepository
	history       repository.SouscriptionHistoryRepository
	catalog       *catalog.Catalog
	receipts      *upload.ReceiptStore
	sender        ProformaSender
	dispatcher    events.Dispatcher
}

// SouscriptionDependencies bundles collaborators for the service.
type SouscriptionDependencies struct {
	SouscriptionRepo repository.SouscriptionRepository
	LogementRepo     repository.LogementRepository
	HistoryRepo      repository.SouscriptionHistoryRepository
	Catalog          *catalog.Catalog
	Receipts         *upload.ReceiptStore
	Sender           ProformaSender
	Dispatcher       events.Dispatcher
}

// SouscriptionInput describes the create/update payload assembled by the
// wizard. Reference and statut are never accepted from the caller.
type SouscriptionInput struct {
	NomClient            string
	PrenomClient         string
	EmailClient          string
	DateNaissanceClient  *time.Time
	VilleNaissanceClient string
	PaysNaissanceClient  string
	NationaliteClient    string
	PaysDestination      string
	DateArriveePrevue    *time.Time

	EcoleUniversite string
	Filiere         string
	PaysEcole       string
	VilleEcole      string
	CodePostalEcole string
	AdresseEcole    string

	LogementID        int64
	DateEntreePrevue  *time.Time
	DureeLocationMois int
}

// NewSouscriptionService constructs the service.
func NewSouscriptionService(deps SouscriptionDependencies) *SouscriptionService {
	return &SouscriptionService{
		souscriptions: deps.SouscriptionRepo,
		logements:     deps.LogementRepo,
		history:       deps.HistoryRepo,
		catalog:       deps.Catalog,
		receipts:      deps.Receipts,
		sender:        deps.Sender,
		dispatcher:    deps.Dispatcher,
	}
}

func validateSouscriptionInput(input SouscriptionInput) map[string]any {
	fieldErrors := map[string]any{}
	if len(strings.TrimSpace(input.NomClient)) < 2 {
		fieldErrors["nom_client"] = "nom must be at least 2 characters"
	}
	if len(strings.TrimSpace(input.PrenomClient)) < 2 {
		fieldErrors["prenom_client"] = "prenom must be at least 2 characters"
	}
	email := strings.TrimSpace(input.EmailClient)
	if email == "" || !strings.Contains(email, "@") {
		fieldErrors["email_client"] = "valid email is required"
	}
	if strings.TrimSpace(input.EcoleUniversite) == "" {
		fieldErrors["ecole_universite"] = "ecole or universite is required"
	}
	if strings.TrimSpace(input.Filiere) == "" {
		fieldErrors["filiere"] = "filiere is required"
	}
	if input.LogementID <= 0 {
		fieldErrors["logement_id"] = "logement is required"
	}
	// 0 means "not provided" and is replaced by the default later.
	if input.DureeLocationMois < 0 {
		fieldErrors["duree_location_mois"] = "duree cannot be negative"
	} else if input.DureeLocationMois > 60 {
		fieldErrors["duree_location_mois"] = "duree cannot exceed 60 months"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// Create opens a subscription in ATTENTE_PAIEMENT against an available
// unit. The reference is generated server-side and regenerated on the
// rare collision.
func (s *SouscriptionService) Create(ctx context.Context, actor events.Actor, input SouscriptionInput) (*domain.Souscription, error) {
	if fieldErrors := validateSouscriptionInput(input); fieldErrors != nil {
		return nil, util.NewValidationError("invalid souscription payload", fieldErrors)
	}

	logement, err := s.logements.GetByID(ctx, input.LogementID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("logement", map[string]any{"id": input.LogementID})
		}
		return nil, err
	}
	if logement.Statut != domain.LogementDisponible {
		return nil, util.NewConflict("logement is not disponible", map[string]any{"statut": logement.Statut})
	}

	reference, err := s.freeReference(ctx)
	if err != nil {
		return nil, err
	}

	souscription := &domain.Souscription{
		Reference:            reference,
		NomClient:            strings.TrimSpace(input.NomClient),
		PrenomClient:         strings.TrimSpace(input.PrenomClient),
		EmailClient:          strings.TrimSpace(strings.ToLower(input.EmailClient)),
		DateNaissanceClient:  input.DateNaissanceClient,
		VilleNaissanceClient: strings.TrimSpace(input.VilleNaissanceClient),
		PaysNaissanceClient:  strings.TrimSpace(input.PaysNaissanceClient),
		NationaliteClient:    strings.TrimSpace(input.NationaliteClient),
		PaysDestination:      strings.TrimSpace(input.PaysDestination),
		DateArriveePrevue:    input.DateArriveePrevue,
		EcoleUniversite:      strings.TrimSpace(input.EcoleUniversite),
		Filiere:              strings.TrimSpace(input.Filiere),
		PaysEcole:            strings.TrimSpace(input.PaysEcole),
		VilleEcole:           strings.TrimSpace(input.VilleEcole),
		CodePostalEcole:      strings.TrimSpace(input.CodePostalEcole),
		AdresseEcole:         strings.TrimSpace(input.AdresseEcole),
		LogementID:           logement.ID,
		DateEntreePrevue:     input.DateEntreePrevue,
		DureeLocationMois:    input.DureeLocationMois,
		Statut:               domain.SouscriptionAttentePaiement,
	}
	if souscription.DureeLocationMois == 0 {
		souscription.DureeLocationMois = defaultDureeLocationMois
	}

	if err := s.souscriptions.Create(ctx, souscription); err != nil {
		return nil, err
	}
	souscription.Logement = logement

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSouscriptionCreated,
		SubjectID: souscription.ID,
		Actor:     actor,
		Payload: events.SouscriptionCreatedPayload{
			Reference:   souscription.Reference,
			EmailClient: souscription.EmailClient,
			LogementID:  souscription.LogementID,
		},
	})
	return souscription, nil
}

// Update rewrites an editable subscription. Edits stop once the record
// has been delivered; the reference and statut never change here.
func (s *SouscriptionService) Update(ctx context.Context, actor events.Actor, id int64, input SouscriptionInput) (*domain.Souscription, error) {
	if fieldErrors := validateSouscriptionInput(input); fieldErrors != nil {
		return nil, util.NewValidationError("invalid souscription payload", fieldErrors)
	}

	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !souscription.Editable() {
		return nil, util.NewConflict("souscription can no longer be modified", map[string]any{"statut": souscription.Statut})
	}

	if input.LogementID != souscription.LogementID {
		logement, err := s.logements.GetByID(ctx, input.LogementID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewNotFound("logement", map[string]any{"id": input.LogementID})
			}
			return nil, err
		}
		if logement.Statut != domain.LogementDisponible {
			return nil, util.NewConflict("logement is not disponible", map[string]any{"statut": logement.Statut})
		}
		souscription.LogementID = logement.ID
		souscription.Logement = logement
	}

	souscription.NomClient = strings.TrimSpace(input.NomClient)
	souscription.PrenomClient = strings.TrimSpace(input.PrenomClient)
	souscription.EmailClient = strings.TrimSpace(strings.ToLower(input.EmailClient))
	souscription.DateNaissanceClient = input.DateNaissanceClient
	souscription.VilleNaissanceClient = strings.TrimSpace(input.VilleNaissanceClient)
	souscription.PaysNaissanceClient = strings.TrimSpace(input.PaysNaissanceClient)
	souscription.NationaliteClient = strings.TrimSpace(input.NationaliteClient)
	souscription.PaysDestination = strings.TrimSpace(input.PaysDestination)
	souscription.DateArriveePrevue = input.DateArriveePrevue
	souscription.EcoleUniversite = strings.TrimSpace(input.EcoleUniversite)
	souscription.Filiere = strings.TrimSpace(input.Filiere)
	souscription.PaysEcole = strings.TrimSpace(input.PaysEcole)
	souscription.VilleEcole = strings.TrimSpace(input.VilleEcole)
	souscription.CodePostalEcole = strings.TrimSpace(input.CodePostalEcole)
	souscription.AdresseEcole = strings.TrimSpace(input.AdresseEcole)
	souscription.DateEntreePrevue = input.DateEntreePrevue
	if input.DureeLocationMois > 0 {
		souscription.DureeLocationMois = input.DureeLocationMois
	}

	if err := s.souscriptions.Update(ctx, souscription); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSouscriptionUpdated,
		SubjectID: souscription.ID,
		Actor:     actor,
		Payload: events.SouscriptionCreatedPayload{
			Reference:   souscription.Reference,
			EmailClient: souscription.EmailClient,
			LogementID:  souscription.LogementID,
		},
	})
	return souscription, nil
}

// Payer confirms payment: ATTENTE_PAIEMENT -> ATTENTE_LIVRAISON. The
// backing unit flips to occupe and an optional receipt is archived.
func (s *SouscriptionService) Payer(ctx context.Context, actor events.Actor, id int64, receiptName string, receipt []byte) (*domain.Souscription, error) {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ActionAllowed(domain.ActionPayer, actor.Role, souscription.Statut) {
		return nil, util.NewConflict("souscription is not awaiting payment", map[string]any{"statut": souscription.Statut})
	}

	if len(receipt) > 0 && s.receipts != nil {
		if _, err := s.receipts.Save(souscription.Reference, receiptName, receipt); err != nil {
			return nil, err
		}
	}

	if err := s.applyTransition(ctx, actor, souscription, domain.SouscriptionAttenteLivraison, "paiement confirme"); err != nil {
		return nil, err
	}

	if souscription.Logement != nil && souscription.Logement.Statut != domain.LogementOccupe {
		souscription.Logement.Statut = domain.LogementOccupe
		if err := s.logements.Update(ctx, souscription.Logement); err != nil {
			return nil, err
		}
	}
	return souscription, nil
}

// Livrer marks the attestation delivered: ATTENTE_LIVRAISON -> LIVRE.
// Only admin-generale may deliver.
func (s *SouscriptionService) Livrer(ctx context.Context, actor events.Actor, id int64) (*domain.Souscription, error) {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdminGenerale {
		return nil, util.NewForbidden("only admin-generale may deliver", map[string]any{"redirect": actor.Role.HomeRoute()})
	}
	if !domain.ActionAllowed(domain.ActionLivrer, actor.Role, souscription.Statut) {
		return nil, util.NewConflict("souscription is not awaiting delivery", map[string]any{"statut": souscription.Statut})
	}
	if err := s.applyTransition(ctx, actor, souscription, domain.SouscriptionLivre, "attestation livree"); err != nil {
		return nil, err
	}
	return souscription, nil
}

// ChangerStatut applies an explicit status change following the forward
// graph. Moving into CLOTURE is reserved to admin-generale.
func (s *SouscriptionService) ChangerStatut(ctx context.Context, actor events.Actor, id int64, next domain.StatutSouscription, comment string) (*domain.Souscription, error) {
	if !domain.ValidStatutSouscription(string(next)) {
		return nil, util.NewValidationError("unknown statut", map[string]any{"statut": next})
	}
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if next == domain.SouscriptionCloture && actor.Role != domain.RoleAdminGenerale {
		return nil, util.NewForbidden("only admin-generale may close", map[string]any{"redirect": actor.Role.HomeRoute()})
	}
	if !domain.CanTransition(souscription.Statut, next) {
		return nil, util.NewConflict("invalid status transition", map[string]any{
			"from": souscription.Statut,
			"to":   next,
		})
	}
	if err := s.applyTransition(ctx, actor, souscription, next, comment); err != nil {
		return nil, err
	}
	return souscription, nil
}

// Delete removes a subscription at any stage. When the record had already
// reserved its unit the unit returns to disponible.
func (s *SouscriptionService) Delete(ctx context.Context, actor events.Actor, id int64) error {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.souscriptions.Delete(ctx, id); err != nil {
		return err
	}
	if souscription.Statut != domain.SouscriptionAttentePaiement && souscription.Logement != nil {
		souscription.Logement.Statut = domain.LogementDisponible
		if err := s.logements.Update(ctx, souscription.Logement); err != nil {
			return err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSouscriptionDeleted,
		SubjectID: id,
		Actor:     actor,
		Payload: events.SouscriptionCreatedPayload{
			Reference:   souscription.Reference,
			EmailClient: souscription.EmailClient,
			LogementID:  souscription.LogementID,
		},
	})
	return nil
}

// GetByID fetches a subscription with its unit attached.
func (s *SouscriptionService) GetByID(ctx context.Context, id int64) (*domain.Souscription, error) {
	souscription, err := s.souscriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("souscription", map[string]any{"id": id})
		}
		return nil, err
	}
	return s.attachLogement(ctx, souscription)
}

// GetByReference fetches a subscription by its public reference.
func (s *SouscriptionService) GetByReference(ctx context.Context, reference string) (*domain.Souscription, error) {
	souscription, err := s.souscriptions.GetByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("souscription", map[string]any{"reference": reference})
		}
		return nil, err
	}
	return s.attachLogement(ctx, souscription)
}

// List returns subscriptions matching the filter, units attached.
func (s *SouscriptionService) List(ctx context.Context, filter repository.SouscriptionFilter) ([]domain.Souscription, error) {
	result, err := s.souscriptions.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range result {
		if _, err := s.attachLogement(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// History returns the audit trail of status changes.
func (s *SouscriptionService) History(ctx context.Context, id int64, limit, offset int) ([]domain.SouscriptionHistory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListBySouscription(ctx, id, limit, offset)
}

// GenerateProforma renders the priced preliminary document for the given
// catalog service ids.
func (s *SouscriptionService) GenerateProforma(ctx context.Context, id int64, serviceIDs []int64) ([]byte, error) {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	services := s.catalog.GetByIDs(serviceIDs)
	if len(services) == 0 {
		return nil, util.NewValidationError("at least one known service is required", map[string]any{"service_ids": serviceIDs})
	}
	return document.Proforma(document.ProformaInput{
		ClientNom:    souscription.NomClient,
		ClientPrenom: souscription.PrenomClient,
		ClientEmail:  souscription.EmailClient,
		Services:     services,
		Logement:     souscription.Logement,
		Organisation: s.catalog.Organisation(),
	})
}

// GenerateAttestation renders the two-part certificate. Reserved to
// admin-generale.
func (s *SouscriptionService) GenerateAttestation(ctx context.Context, actor events.Actor, id int64) ([]byte, error) {
	if !domain.ActionAllowed(domain.ActionAttestation, actor.Role, "") {
		return nil, util.NewForbidden("only admin-generale may generate attestations", map[string]any{"redirect": actor.Role.HomeRoute()})
	}
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return document.Attestation(document.AttestationInput{
		Reference:         souscription.Reference,
		ClientNom:         souscription.NomClient,
		ClientPrenom:      souscription.PrenomClient,
		DateNaissance:     souscription.DateNaissanceClient,
		VilleNaissance:    souscription.VilleNaissanceClient,
		PaysNaissance:     souscription.PaysNaissanceClient,
		Logement:          souscription.Logement,
		DateEntreePrevue:  souscription.DateEntreePrevue,
		DureeLocationMois: souscription.DureeLocationMois,
		Organisation:      s.catalog.Organisation(),
	})
}

// EnvoyerProforma generates the proforma and mails it to the client.
func (s *SouscriptionService) EnvoyerProforma(ctx context.Context, actor events.Actor, id int64, serviceIDs []int64) error {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	pdf, err := s.GenerateProforma(ctx, id, serviceIDs)
	if err != nil {
		return err
	}
	if s.sender != nil {
		if err := s.sender.SendProformaEmail(ctx, souscription.EmailClient, souscription.Reference, pdf); err != nil {
			return err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventProformaSent,
		SubjectID: souscription.ID,
		Actor:     actor,
		Payload: events.ProformaSentPayload{
			Reference:   souscription.Reference,
			EmailClient: souscription.EmailClient,
		},
	})
	return nil
}

// Actions lists the workflow actions visible to a role for this record.
func (s *SouscriptionService) Actions(ctx context.Context, role domain.Role, id int64) ([]domain.SouscriptionAction, error) {
	souscription, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.AllowedActions(role, souscription.Statut), nil
}

func (s *SouscriptionService) applyTransition(ctx context.Context, actor events.Actor, souscription *domain.Souscription, next domain.StatutSouscription, comment string) error {
	oldStatut := souscription.Statut
	souscription.Statut = next
	if err := s.souscriptions.Update(ctx, souscription); err != nil {
		souscription.Statut = oldStatut
		return err
	}
	if s.history != nil {
		entry := &domain.SouscriptionHistory{
			SouscriptionID: souscription.ID,
			OldStatut:      oldStatut,
			NewStatut:      next,
			ChangedByEmail: actor.Email,
			Comment:        comment,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSouscriptionStatusChanged,
		SubjectID: souscription.ID,
		Actor:     actor,
		Payload: events.SouscriptionStatusChangedPayload{
			Reference: souscription.Reference,
			OldStatut: oldStatut,
			NewStatut: next,
			Comment:   comment,
		},
	})
	return nil
}

func (s *SouscriptionService) attachLogement(ctx context.Context, souscription *domain.Souscription) (*domain.Souscription, error) {
	if souscription.Logement != nil || souscription.LogementID == 0 {
		return souscription, nil
	}
	logement, err := s.logements.GetByID(ctx, souscription.LogementID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return souscription, nil
		}
		return nil, err
	}
	souscription.Logement = logement
	return souscription, nil
}

// freeReference draws references until one does not collide with an
// existing row.
func (s *SouscriptionService) freeReference(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		candidate := generateReference()
		_, err := s.souscriptions.GetByReference(ctx, candidate)
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", util.NewInternalError(errors.New("could not allocate a unique reference"))
}

func generateReference() string {
	return "ATT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func (s *SouscriptionService) publishEvent(ctx context.Context, event events.Event) {
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
