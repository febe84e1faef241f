package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/boaz-housing/internal/async"
	"github.com/spec-kit/boaz-housing/internal/catalog"
	"github.com/spec-kit/boaz-housing/internal/document"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

// Wizard steps. The order is fixed: client identity, academic details,
// housing selection, services and recap.
const (
	WizardStepClient   = 1
	WizardStepEtudes   = 2
	WizardStepLogement = 3
	WizardStepRecap    = 4
)

// WizardData accumulates the fields collected across steps. It is the
// union of all step payloads; each step only validates its own slice.
type WizardData struct {
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

	ServiceIDs []int64
}

// WizardDraftView is the immutable snapshot handed to handlers.
type WizardDraftView struct {
	ID             string
	Step           int
	SouscriptionID int64
	Data           WizardData
	SearchTerm     string
	SearchResults  []domain.Logement
	ProformaReady  bool
	ExpiresAt      time.Time
}

type wizardDraft struct {
	id             string
	step           int
	souscriptionID int64
	boundLogement  int64
	data           WizardData

	searchSeq     uint64
	searchTerm    string
	searchResults []domain.Logement
	searchDeb     *async.Debouncer

	proformaDeb   *async.Debouncer
	proforma      []byte
	proformaReady bool

	submitting bool
	expiresAt  time.Time
}

// WizardService holds server-side subscription drafts. Drafts are
// ephemeral: they live in memory, expire after the configured TTL and
// are destroyed on successful submit.
type WizardService struct {
	logements     *LogementService
	souscriptions *SouscriptionService
	catalog       *catalog.Catalog
	logger        *zap.Logger
	draftTTL      time.Duration
	debounce      time.Duration

	mu     sync.Mutex
	drafts map[string]*wizardDraft
}

// NewWizardService builds the service.
func NewWizardService(logements *LogementService, souscriptions *SouscriptionService, cat *catalog.Catalog, draftTTL, debounce time.Duration, logger *zap.Logger) *WizardService {
	if draftTTL <= 0 {
		draftTTL = time.Hour
	}
	return &WizardService{
		logements:     logements,
		souscriptions: souscriptions,
		catalog:       cat,
		logger:        logger,
		draftTTL:      draftTTL,
		debounce:      debounce,
		drafts:        make(map[string]*wizardDraft),
	}
}

// Start opens a fresh draft. Binding an existing souscription id prefills
// every step and turns the final submit into an update; the record must
// still be editable.
func (w *WizardService) Start(ctx context.Context, souscriptionID *int64) (*WizardDraftView, error) {
	draft := &wizardDraft{
		id:          uuid.NewString(),
		step:        WizardStepClient,
		searchDeb:   async.NewDebouncer(w.debounce),
		proformaDeb: async.NewDebouncer(w.debounce),
		expiresAt:   time.Now().Add(w.draftTTL),
	}
	draft.data.DureeLocationMois = defaultDureeLocationMois

	if souscriptionID != nil {
		souscription, err := w.souscriptions.GetByID(ctx, *souscriptionID)
		if err != nil {
			return nil, err
		}
		if !souscription.Editable() {
			return nil, util.NewConflict("souscription can no longer be modified", map[string]any{"statut": souscription.Statut})
		}
		draft.souscriptionID = souscription.ID
		draft.boundLogement = souscription.LogementID
		draft.data = WizardData{
			NomClient:            souscription.NomClient,
			PrenomClient:         souscription.PrenomClient,
			EmailClient:          souscription.EmailClient,
			DateNaissanceClient:  souscription.DateNaissanceClient,
			VilleNaissanceClient: souscription.VilleNaissanceClient,
			PaysNaissanceClient:  souscription.PaysNaissanceClient,
			NationaliteClient:    souscription.NationaliteClient,
			PaysDestination:      souscription.PaysDestination,
			DateArriveePrevue:    souscription.DateArriveePrevue,
			EcoleUniversite:      souscription.EcoleUniversite,
			Filiere:              souscription.Filiere,
			PaysEcole:            souscription.PaysEcole,
			VilleEcole:           souscription.VilleEcole,
			CodePostalEcole:      souscription.CodePostalEcole,
			AdresseEcole:         souscription.AdresseEcole,
			LogementID:           souscription.LogementID,
			DateEntreePrevue:     souscription.DateEntreePrevue,
			DureeLocationMois:    souscription.DureeLocationMois,
		}
	}

	w.mu.Lock()
	w.sweepLocked()
	w.drafts[draft.id] = draft
	w.mu.Unlock()
	return draft.view(), nil
}

// Get returns the current draft snapshot.
func (w *WizardService) Get(draftID string) (*WizardDraftView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}
	return draft.view(), nil
}

// Next merges the payload into the draft, validates the current step and
// advances. Validation failures return per-field errors and leave the
// step unchanged but keep the merged fields, so the client does not lose
// typed input.
func (w *WizardService) Next(ctx context.Context, draftID string, data WizardData) (*WizardDraftView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}

	draft.merge(data)
	if fieldErrors := w.validateStep(ctx, draft); fieldErrors != nil {
		return nil, util.NewValidationError("step validation failed", fieldErrors)
	}
	if draft.step < WizardStepRecap {
		draft.step++
	}
	draft.touch(w.draftTTL)
	return draft.view(), nil
}

// Back steps backwards without validating, preserving every collected
// field. Leaving the recap step re-arms the once-per-entry proforma.
func (w *WizardService) Back(draftID string) (*WizardDraftView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}
	if draft.step == WizardStepRecap {
		draft.proformaReady = false
		draft.proforma = nil
	}
	if draft.step > WizardStepClient {
		draft.step--
	}
	draft.touch(w.draftTTL)
	return draft.view(), nil
}

// SearchLogements registers a new search term on the housing step. The
// query itself is debounced; rapid keystrokes coalesce into one lookup
// and a response belonging to a superseded term is discarded.
func (w *WizardService) SearchLogements(draftID, term string) (*WizardDraftView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}

	draft.searchTerm = strings.TrimSpace(term)
	draft.searchSeq++
	seq := draft.searchSeq
	queryTerm := draft.searchTerm
	draft.touch(w.draftTTL)

	draft.searchDeb.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		results, err := w.logements.Disponibles(ctx, queryTerm, 50, 0)
		if err != nil {
			w.logger.Warn("wizard housing search failed", zap.String("term", queryTerm), zap.Error(err))
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		current, ok := w.drafts[draftID]
		if !ok || current.searchSeq != seq {
			// a newer search superseded this response
			return
		}
		current.searchResults = results
	})

	return draft.view(), nil
}

// RequestProforma arms the debounced proforma generation on the recap
// step. It renders at most once per entry into the step; repeated calls
// while already rendered are no-ops.
func (w *WizardService) RequestProforma(draftID string) (*WizardDraftView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}
	if draft.step != WizardStepRecap {
		return nil, util.NewConflict("proforma is only available on the recap step", map[string]any{"step": draft.step})
	}
	if draft.proformaReady {
		return draft.view(), nil
	}

	data := draft.data
	draft.touch(w.draftTTL)
	draft.proformaDeb.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pdf, err := w.renderProforma(ctx, data)
		if err != nil {
			w.logger.Warn("wizard proforma generation failed", zap.Error(err))
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		current, ok := w.drafts[draftID]
		if !ok || current.step != WizardStepRecap {
			return
		}
		current.proforma = pdf
		current.proformaReady = true
	})
	return draft.view(), nil
}

// Proforma returns the rendered document once ready.
func (w *WizardService) Proforma(draftID string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		return nil, err
	}
	if !draft.proformaReady {
		return nil, util.NewConflict("proforma is not ready yet", nil)
	}
	return draft.proforma, nil
}

// Submit validates every step and persists the subscription, creating or
// updating depending on how the draft was started. Only one submit may
// be in flight per draft; the draft is destroyed on success.
func (w *WizardService) Submit(ctx context.Context, actor events.Actor, draftID string) (*domain.Souscription, error) {
	w.mu.Lock()
	draft, err := w.draftLocked(draftID)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if draft.submitting {
		w.mu.Unlock()
		return nil, util.NewConflict("submit already in progress", nil)
	}
	for step := WizardStepClient; step <= WizardStepRecap; step++ {
		probe := *draft
		probe.step = step
		if fieldErrors := w.validateStep(ctx, &probe); fieldErrors != nil {
			w.mu.Unlock()
			return nil, util.NewValidationError("draft is incomplete", fieldErrors)
		}
	}
	draft.submitting = true
	input := draft.input()
	souscriptionID := draft.souscriptionID
	w.mu.Unlock()

	var souscription *domain.Souscription
	if souscriptionID > 0 {
		souscription, err = w.souscriptions.Update(ctx, actor, souscriptionID, input)
	} else {
		souscription, err = w.souscriptions.Create(ctx, actor, input)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		if current, ok := w.drafts[draftID]; ok {
			current.submitting = false
		}
		return nil, err
	}
	w.discardLocked(draftID)
	return souscription, nil
}

// Abandon destroys a draft explicitly.
func (w *WizardService) Abandon(draftID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.discardLocked(draftID)
}

func (w *WizardService) validateStep(ctx context.Context, draft *wizardDraft) map[string]any {
	fieldErrors := map[string]any{}
	switch draft.step {
	case WizardStepClient:
		if len(strings.TrimSpace(draft.data.NomClient)) < 2 {
			fieldErrors["nom_client"] = "nom must be at least 2 characters"
		}
		if len(strings.TrimSpace(draft.data.PrenomClient)) < 2 {
			fieldErrors["prenom_client"] = "prenom must be at least 2 characters"
		}
		email := strings.TrimSpace(draft.data.EmailClient)
		if email == "" || !strings.Contains(email, "@") {
			fieldErrors["email_client"] = "valid email is required"
		}
	case WizardStepEtudes:
		if strings.TrimSpace(draft.data.EcoleUniversite) == "" {
			fieldErrors["ecole_universite"] = "ecole or universite is required"
		}
		if strings.TrimSpace(draft.data.Filiere) == "" {
			fieldErrors["filiere"] = "filiere is required"
		}
	case WizardStepLogement:
		if draft.data.LogementID <= 0 {
			fieldErrors["logement_id"] = "a logement must be selected"
		} else if draft.souscriptionID == 0 || draft.data.LogementID != draft.boundLogementID() {
			logement, err := w.logements.GetByID(ctx, draft.data.LogementID)
			if err != nil {
				fieldErrors["logement_id"] = "selected logement does not exist"
			} else if logement.Statut != domain.LogementDisponible {
				fieldErrors["logement_id"] = "selected logement is no longer disponible"
			}
		}
		if draft.data.DureeLocationMois < 1 || draft.data.DureeLocationMois > 60 {
			fieldErrors["duree_location_mois"] = "duree must be between 1 and 60 months"
		}
	case WizardStepRecap:
		if len(draft.data.ServiceIDs) == 0 {
			fieldErrors["service_ids"] = "at least one service must be selected"
		} else if len(w.catalog.GetByIDs(draft.data.ServiceIDs)) == 0 {
			fieldErrors["service_ids"] = "no selected service exists in the catalog"
		}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func (w *WizardService) renderProforma(ctx context.Context, data WizardData) ([]byte, error) {
	services := w.catalog.GetByIDs(data.ServiceIDs)
	var logement *domain.Logement
	if data.LogementID > 0 {
		found, err := w.logements.GetByID(ctx, data.LogementID)
		if err == nil {
			logement = found
		}
	}
	return document.Proforma(document.ProformaInput{
		ClientNom:    data.NomClient,
		ClientPrenom: data.PrenomClient,
		ClientEmail:  data.EmailClient,
		Services:     services,
		Logement:     logement,
		Organisation: w.catalog.Organisation(),
	})
}

// draftLocked fetches a live draft; expired drafts are discarded on
// access. Callers must hold the mutex.
func (w *WizardService) draftLocked(draftID string) (*wizardDraft, error) {
	draft, ok := w.drafts[draftID]
	if !ok {
		return nil, util.NewNotFound("wizard draft", map[string]any{"draft_id": draftID})
	}
	if time.Now().After(draft.expiresAt) {
		w.discardLocked(draftID)
		return nil, util.NewNotFound("wizard draft", map[string]any{"draft_id": draftID})
	}
	return draft, nil
}

func (w *WizardService) discardLocked(draftID string) {
	draft, ok := w.drafts[draftID]
	if !ok {
		return
	}
	draft.searchDeb.Stop()
	draft.proformaDeb.Stop()
	delete(w.drafts, draftID)
}

func (w *WizardService) sweepLocked() {
	now := time.Now()
	for id, draft := range w.drafts {
		if now.After(draft.expiresAt) {
			w.discardLocked(id)
		}
	}
}

func (d *wizardDraft) touch(ttl time.Duration) {
	d.expiresAt = time.Now().Add(ttl)
}

// boundLogementID returns the unit the bound souscription already holds,
// so editing a record does not reject its own occupied unit.
func (d *wizardDraft) boundLogementID() int64 {
	return d.boundLogement
}

func (d *wizardDraft) merge(data WizardData) {
	if data.NomClient != "" {
		d.data.NomClient = data.NomClient
	}
	if data.PrenomClient != "" {
		d.data.PrenomClient = data.PrenomClient
	}
	if data.EmailClient != "" {
		d.data.EmailClient = data.EmailClient
	}
	if data.DateNaissanceClient != nil {
		d.data.DateNaissanceClient = data.DateNaissanceClient
	}
	if data.VilleNaissanceClient != "" {
		d.data.VilleNaissanceClient = data.VilleNaissanceClient
	}
	if data.PaysNaissanceClient != "" {
		d.data.PaysNaissanceClient = data.PaysNaissanceClient
	}
	if data.NationaliteClient != "" {
		d.data.NationaliteClient = data.NationaliteClient
	}
	if data.PaysDestination != "" {
		d.data.PaysDestination = data.PaysDestination
	}
	if data.DateArriveePrevue != nil {
		d.data.DateArriveePrevue = data.DateArriveePrevue
	}
	if data.EcoleUniversite != "" {
		d.data.EcoleUniversite = data.EcoleUniversite
	}
	if data.Filiere != "" {
		d.data.Filiere = data.Filiere
	}
	if data.PaysEcole != "" {
		d.data.PaysEcole = data.PaysEcole
	}
	if data.VilleEcole != "" {
		d.data.VilleEcole = data.VilleEcole
	}
	if data.CodePostalEcole != "" {
		d.data.CodePostalEcole = data.CodePostalEcole
	}
	if data.AdresseEcole != "" {
		d.data.AdresseEcole = data.AdresseEcole
	}
	if data.LogementID > 0 {
		d.data.LogementID = data.LogementID
	}
	if data.DateEntreePrevue != nil {
		d.data.DateEntreePrevue = data.DateEntreePrevue
	}
	if data.DureeLocationMois > 0 {
		d.data.DureeLocationMois = data.DureeLocationMois
	}
	if data.ServiceIDs != nil {
		d.data.ServiceIDs = data.ServiceIDs
	}
}

func (d *wizardDraft) input() SouscriptionInput {
	return SouscriptionInput{
		NomClient:            d.data.NomClient,
		PrenomClient:         d.data.PrenomClient,
		EmailClient:          d.data.EmailClient,
		DateNaissanceClient:  d.data.DateNaissanceClient,
		VilleNaissanceClient: d.data.VilleNaissanceClient,
		PaysNaissanceClient:  d.data.PaysNaissanceClient,
		NationaliteClient:    d.data.NationaliteClient,
		PaysDestination:      d.data.PaysDestination,
		DateArriveePrevue:    d.data.DateArriveePrevue,
		EcoleUniversite:      d.data.EcoleUniversite,
		Filiere:              d.data.Filiere,
		PaysEcole:            d.data.PaysEcole,
		VilleEcole:           d.data.VilleEcole,
		CodePostalEcole:      d.data.CodePostalEcole,
		AdresseEcole:         d.data.AdresseEcole,
		LogementID:           d.data.LogementID,
		DateEntreePrevue:     d.data.DateEntreePrevue,
		DureeLocationMois:    d.data.DureeLocationMois,
	}
}

func (d *wizardDraft) view() *WizardDraftView {
	results := make([]domain.Logement, len(d.searchResults))
	copy(results, d.searchResults)
	return &WizardDraftView{
		ID:             d.id,
		Step:           d.step,
		SouscriptionID: d.souscriptionID,
		Data:           d.data,
		SearchTerm:     d.searchTerm,
		SearchResults:  results,
		ProformaReady:  d.proformaReady,
		ExpiresAt:      d.expiresAt,
	}
}
