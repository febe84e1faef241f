package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

type wizardFixture struct {
	wizard        *WizardService
	souscriptions *SouscriptionService
	logements     *fakeLogementRepo
	souscRepo     *fakeSouscriptionRepo
	logementID    int64
}

func newWizardFixture(t *testing.T, debounce time.Duration) *wizardFixture {
	t.Helper()
	logements := newFakeLogementRepo()
	souscRepo := newFakeSouscriptionRepo()
	cat := testCatalog(t)

	logement := &domain.Logement{
		Titre:          "Studio centre-ville",
		Adresse:        "12 rue des Lilas",
		Ville:          "Paris",
		CodePostal:     "75011",
		Pays:           "France",
		Loyer:          450,
		MontantCharges: 50,
		MontantTotal:   500,
		Statut:         domain.LogementDisponible,
	}
	require.NoError(t, logements.Create(context.Background(), logement))

	logementSvc := NewLogementService(LogementDependencies{
		LogementRepo:     logements,
		SouscriptionRepo: souscRepo,
		Dispatcher:       events.NewInMemoryDispatcher(),
	})
	souscriptionSvc := NewSouscriptionService(SouscriptionDependencies{
		SouscriptionRepo: souscRepo,
		LogementRepo:     logements,
		HistoryRepo:      newFakeHistoryRepo(),
		Catalog:          cat,
		Dispatcher:       events.NewInMemoryDispatcher(),
	})
	wizard := NewWizardService(logementSvc, souscriptionSvc, cat, time.Hour, debounce, testLogger())
	return &wizardFixture{
		wizard:        wizard,
		souscriptions: souscriptionSvc,
		logements:     logements,
		souscRepo:     souscRepo,
		logementID:    logement.ID,
	}
}

func (fx *wizardFixture) advanceToRecap(t *testing.T, draftID string) {
	t.Helper()
	_, err := fx.wizard.Next(context.Background(), draftID, WizardData{
		NomClient:    "Ndiaye",
		PrenomClient: "Awa",
		EmailClient:  "awa@example.com",
	})
	require.NoError(t, err)
	_, err = fx.wizard.Next(context.Background(), draftID, WizardData{
		EcoleUniversite: "Sorbonne",
		Filiere:         "Droit",
		PaysEcole:       "France",
	})
	require.NoError(t, err)
	_, err = fx.wizard.Next(context.Background(), draftID, WizardData{
		LogementID: fx.logementID,
	})
	require.NoError(t, err)
}

func TestWizardNext_StepScopedValidation(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, WizardStepClient, draft.Step)

	// incomplete first step: step does not advance, fields are kept
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{NomClient: "Ndiaye"})
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Contains(t, domainErr.Details, "prenom_client")
	require.Contains(t, domainErr.Details, "email_client")
	require.NotContains(t, domainErr.Details, "nom_client")

	current, err := fx.wizard.Get(draft.ID)
	require.NoError(t, err)
	require.Equal(t, WizardStepClient, current.Step)
	require.Equal(t, "Ndiaye", current.Data.NomClient)

	// completing only the missing fields now succeeds
	next, err := fx.wizard.Next(context.Background(), draft.ID, WizardData{
		PrenomClient: "Awa",
		EmailClient:  "awa@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, WizardStepEtudes, next.Step)
}

func TestWizardNext_RequiresFiliere(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{
		NomClient: "Ndiaye", PrenomClient: "Awa", EmailClient: "awa@example.com",
	})
	require.NoError(t, err)

	// a school alone does not clear the academic step
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{
		EcoleUniversite: "Sorbonne",
		PaysEcole:       "France",
	})
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Contains(t, domainErr.Details, "filiere")
	require.NotContains(t, domainErr.Details, "ecole_universite")

	current, err := fx.wizard.Get(draft.ID)
	require.NoError(t, err)
	require.Equal(t, WizardStepEtudes, current.Step)

	next, err := fx.wizard.Next(context.Background(), draft.ID, WizardData{Filiere: "Droit"})
	require.NoError(t, err)
	require.Equal(t, WizardStepLogement, next.Step)
}

func TestWizardNext_RejectsOccupiedLogement(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{
		NomClient: "Ndiaye", PrenomClient: "Awa", EmailClient: "awa@example.com",
	})
	require.NoError(t, err)
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{
		EcoleUniversite: "Sorbonne", Filiere: "Droit",
	})
	require.NoError(t, err)

	logement, err := fx.logements.GetByID(context.Background(), fx.logementID)
	require.NoError(t, err)
	logement.Statut = domain.LogementOccupe
	require.NoError(t, fx.logements.Update(context.Background(), logement))

	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{LogementID: fx.logementID})
	require.Error(t, err)
	require.Contains(t, util.ToDomainError(err).Details, "logement_id")
}

func TestWizardBack_PreservesFieldsAndRearmsProforma(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)
	fx.advanceToRecap(t, draft.ID)

	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{ServiceIDs: []int64{1, 2}})
	require.NoError(t, err)

	_, err = fx.wizard.RequestProforma(draft.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		view, err := fx.wizard.Get(draft.ID)
		return err == nil && view.ProformaReady
	}, time.Second, 5*time.Millisecond)

	// stepping back keeps the collected data but re-arms the proforma
	back, err := fx.wizard.Back(draft.ID)
	require.NoError(t, err)
	require.Equal(t, WizardStepLogement, back.Step)
	require.Equal(t, "Ndiaye", back.Data.NomClient)
	require.Equal(t, fx.logementID, back.Data.LogementID)
	require.False(t, back.ProformaReady)

	_, err = fx.wizard.Proforma(draft.ID)
	require.Error(t, err)
}

func TestWizardSearch_DebouncesAndKeepsLatestTerm(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, 40*time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)

	before := fx.logements.listCallCount()
	for _, term := range []string{"P", "Pa", "Par"} {
		_, err := fx.wizard.SearchLogements(draft.ID, term)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		view, err := fx.wizard.Get(draft.ID)
		return err == nil && len(view.SearchResults) == 1
	}, time.Second, 5*time.Millisecond)

	// the three keystrokes coalesced into a single lookup
	require.Equal(t, before+1, fx.logements.listCallCount())

	view, err := fx.wizard.Get(draft.ID)
	require.NoError(t, err)
	require.Equal(t, "Par", view.SearchTerm)
	require.Equal(t, "Paris", view.SearchResults[0].Ville)
}

func TestWizardSubmit_CreatesSouscription(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)
	fx.advanceToRecap(t, draft.ID)
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{ServiceIDs: []int64{1}})
	require.NoError(t, err)

	souscription, err := fx.wizard.Submit(context.Background(), agentActor(), draft.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SouscriptionAttentePaiement, souscription.Statut)
	require.Equal(t, defaultDureeLocationMois, souscription.DureeLocationMois)

	// the draft is destroyed on success
	_, err = fx.wizard.Get(draft.ID)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestWizardSubmit_UpdatesBoundSouscription(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	existing, err := fx.souscriptions.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	draft, err := fx.wizard.Start(context.Background(), &existing.ID)
	require.NoError(t, err)
	require.Equal(t, existing.ID, draft.SouscriptionID)
	require.Equal(t, "Ndiaye", draft.Data.NomClient)

	fx.advanceToRecap(t, draft.ID)
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{
		NomClient:  "Diallo",
		ServiceIDs: []int64{2},
	})
	require.NoError(t, err)

	updated, err := fx.wizard.Submit(context.Background(), agentActor(), draft.ID)
	require.NoError(t, err)
	require.Equal(t, existing.ID, updated.ID)
	require.Equal(t, existing.Reference, updated.Reference)
	require.Equal(t, "Diallo", updated.NomClient)
}

func TestWizardSubmit_SingleInFlight(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	fx.souscRepo.createStarted = make(chan struct{})
	fx.souscRepo.createRelease = make(chan struct{})

	draft, err := fx.wizard.Start(context.Background(), nil)
	require.NoError(t, err)
	fx.advanceToRecap(t, draft.ID)
	_, err = fx.wizard.Next(context.Background(), draft.ID, WizardData{ServiceIDs: []int64{1}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := fx.wizard.Submit(context.Background(), agentActor(), draft.ID)
		done <- err
	}()

	// first submit is inside the repository call; a second one is refused
	<-fx.souscRepo.createStarted
	_, err = fx.wizard.Submit(context.Background(), agentActor(), draft.ID)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)

	close(fx.souscRepo.createRelease)
	require.NoError(t, <-done)
}

func TestWizardStart_RejectsDeliveredSouscription(t *testing.T) {
	t.Parallel()

	fx := newWizardFixture(t, time.Millisecond)
	existing, err := fx.souscriptions.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)
	_, err = fx.souscriptions.Payer(context.Background(), agentActor(), existing.ID, "", nil)
	require.NoError(t, err)
	_, err = fx.souscriptions.Livrer(context.Background(), adminActor(), existing.ID)
	require.NoError(t, err)

	_, err = fx.wizard.Start(context.Background(), &existing.ID)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}
