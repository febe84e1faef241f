package service

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

var referencePattern = regexp.MustCompile(`^ATT-[0-9A-Z]{16}$`)

type souscriptionFixture struct {
	svc           *SouscriptionService
	logements     *fakeLogementRepo
	souscriptions *fakeSouscriptionRepo
	history       *fakeHistoryRepo
	logementID    int64
}

func newSouscriptionFixture(t *testing.T) *souscriptionFixture {
	t.Helper()
	logements := newFakeLogementRepo()
	souscriptions := newFakeSouscriptionRepo()
	history := newFakeHistoryRepo()

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

	svc := NewSouscriptionService(SouscriptionDependencies{
		SouscriptionRepo: souscriptions,
		LogementRepo:     logements,
		HistoryRepo:      history,
		Catalog:          testCatalog(t),
		Dispatcher:       events.NewInMemoryDispatcher(),
	})
	return &souscriptionFixture{
		svc:           svc,
		logements:     logements,
		souscriptions: souscriptions,
		history:       history,
		logementID:    logement.ID,
	}
}

func validSouscriptionInput(logementID int64) SouscriptionInput {
	return SouscriptionInput{
		NomClient:       "Ndiaye",
		PrenomClient:    "Awa",
		EmailClient:     "Awa@Example.com",
		PaysDestination: "France",
		EcoleUniversite: "Sorbonne",
		Filiere:         "Droit",
		PaysEcole:       "France",
		LogementID:      logementID,
	}
}

func TestSouscriptionCreate_GeneratesReference(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	require.Regexp(t, referencePattern, souscription.Reference)
	require.Equal(t, domain.SouscriptionAttentePaiement, souscription.Statut)
	require.Equal(t, defaultDureeLocationMois, souscription.DureeLocationMois)
	require.Equal(t, "awa@example.com", souscription.EmailClient)
	require.NotNil(t, souscription.Logement)
}

func TestSouscriptionCreate_RejectsUnavailableLogement(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	logement, err := fx.logements.GetByID(context.Background(), fx.logementID)
	require.NoError(t, err)
	logement.Statut = domain.LogementOccupe
	require.NoError(t, fx.logements.Update(context.Background(), logement))

	_, err = fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestSouscriptionCreate_RequiresFiliere(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	input := validSouscriptionInput(fx.logementID)
	input.Filiere = ""

	_, err := fx.svc.Create(context.Background(), agentActor(), input)
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Contains(t, domainErr.Details, "filiere")
	require.NotContains(t, domainErr.Details, "ecole_universite")
}

func TestSouscriptionCreate_DureeBounds(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)

	input := validSouscriptionInput(fx.logementID)
	input.DureeLocationMois = -1
	_, err := fx.svc.Create(context.Background(), agentActor(), input)
	require.Error(t, err)
	require.Contains(t, util.ToDomainError(err).Details, "duree_location_mois")

	input.DureeLocationMois = 61
	_, err = fx.svc.Create(context.Background(), agentActor(), input)
	require.Error(t, err)
	require.Contains(t, util.ToDomainError(err).Details, "duree_location_mois")

	// zero means "not provided" and takes the default
	input.DureeLocationMois = 0
	created, err := fx.svc.Create(context.Background(), agentActor(), input)
	require.NoError(t, err)
	require.Equal(t, defaultDureeLocationMois, created.DureeLocationMois)
}

func TestSouscriptionWorkflow_OpenToAnyViewerRole(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	// payer and supprimer are advertised for every role; enforcement must match
	require.Contains(t, domain.AllowedActions(domain.RoleClient, souscription.Statut), domain.ActionPayer)

	paid, err := fx.svc.Payer(context.Background(), clientActor(), souscription.ID, "", nil)
	require.NoError(t, err)
	require.Equal(t, domain.SouscriptionAttenteLivraison, paid.Statut)

	require.NoError(t, fx.svc.Delete(context.Background(), bailleurActor(), souscription.ID))
}

func TestSouscriptionPayer_TransitionsAndOccupiesLogement(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	paid, err := fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.NoError(t, err)
	require.Equal(t, domain.SouscriptionAttenteLivraison, paid.Statut)

	logement, err := fx.logements.GetByID(context.Background(), fx.logementID)
	require.NoError(t, err)
	require.Equal(t, domain.LogementOccupe, logement.Statut)

	history, err := fx.history.ListBySouscription(context.Background(), souscription.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.SouscriptionAttentePaiement, history[0].OldStatut)
	require.Equal(t, domain.SouscriptionAttenteLivraison, history[0].NewStatut)

	// paying twice is rejected
	_, err = fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestSouscriptionLivrer_AdminOnly(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)
	_, err = fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.NoError(t, err)

	_, err = fx.svc.Livrer(context.Background(), agentActor(), souscription.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	delivered, err := fx.svc.Livrer(context.Background(), adminActor(), souscription.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SouscriptionLivre, delivered.Statut)
}

func TestSouscriptionUpdate_RejectedAfterDelivery(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)
	_, err = fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.NoError(t, err)
	_, err = fx.svc.Livrer(context.Background(), adminActor(), souscription.ID)
	require.NoError(t, err)

	_, err = fx.svc.Update(context.Background(), agentActor(), souscription.ID, validSouscriptionInput(fx.logementID))
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestSouscriptionChangerStatut_ClotureAdminOnly(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)
	_, err = fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.NoError(t, err)
	_, err = fx.svc.Livrer(context.Background(), adminActor(), souscription.ID)
	require.NoError(t, err)

	_, err = fx.svc.ChangerStatut(context.Background(), agentActor(), souscription.ID, domain.SouscriptionCloture, "fin de bail")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	closed, err := fx.svc.ChangerStatut(context.Background(), adminActor(), souscription.ID, domain.SouscriptionCloture, "fin de bail")
	require.NoError(t, err)
	require.Equal(t, domain.SouscriptionCloture, closed.Statut)

	// the graph is forward-only
	_, err = fx.svc.ChangerStatut(context.Background(), adminActor(), souscription.ID, domain.SouscriptionLivre, "")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestSouscriptionDelete_ReleasesLogement(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)
	_, err = fx.svc.Payer(context.Background(), agentActor(), souscription.ID, "", nil)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(context.Background(), adminActor(), souscription.ID))

	logement, err := fx.logements.GetByID(context.Background(), fx.logementID)
	require.NoError(t, err)
	require.Equal(t, domain.LogementDisponible, logement.Statut)

	_, err = fx.svc.GetByID(context.Background(), souscription.ID)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestSouscriptionGenerateProforma(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	pdf, err := fx.svc.GenerateProforma(context.Background(), souscription.ID, []int64{1, 2})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = fx.svc.GenerateProforma(context.Background(), souscription.ID, []int64{999})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

type recordingSender struct {
	to        string
	reference string
	pdf       []byte
}

func (r *recordingSender) SendProformaEmail(_ context.Context, to, reference string, pdf []byte) error {
	r.to = to
	r.reference = reference
	r.pdf = pdf
	return nil
}

func TestSouscriptionEnvoyerProforma_MailsClient(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	sender := &recordingSender{}
	fx.svc.sender = sender

	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	require.NoError(t, fx.svc.EnvoyerProforma(context.Background(), agentActor(), souscription.ID, []int64{1}))
	require.Equal(t, souscription.EmailClient, sender.to)
	require.Equal(t, souscription.Reference, sender.reference)
	require.True(t, bytes.HasPrefix(sender.pdf, []byte("%PDF")))
}

func TestSouscriptionGenerateAttestation_AdminOnly(t *testing.T) {
	t.Parallel()

	fx := newSouscriptionFixture(t)
	souscription, err := fx.svc.Create(context.Background(), agentActor(), validSouscriptionInput(fx.logementID))
	require.NoError(t, err)

	_, err = fx.svc.GenerateAttestation(context.Background(), agentActor(), souscription.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	pdf, err := fx.svc.GenerateAttestation(context.Background(), adminActor(), souscription.ID)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
