package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

func adminActor() events.Actor {
	return events.Actor{Email: "admin@boaz-housing.com", Role: domain.RoleAdminGenerale}
}

func agentActor() events.Actor {
	return events.Actor{Email: "agent@boaz-housing.com", Role: domain.RoleAgentBoaz}
}

func bailleurActor() events.Actor {
	return events.Actor{Email: "bailleur@example.com", Role: domain.RoleBailleur}
}

func clientActor() events.Actor {
	return events.Actor{Email: "client@example.com", Role: domain.RoleClient}
}

func newLogementService(logements *fakeLogementRepo, souscriptions *fakeSouscriptionRepo) *LogementService {
	return NewLogementService(LogementDependencies{
		LogementRepo:     logements,
		SouscriptionRepo: souscriptions,
		Dispatcher:       events.NewInMemoryDispatcher(),
	})
}

func validLogementInput() LogementInput {
	return LogementInput{
		Titre:          "Studio centre-ville",
		Adresse:        "12 rue des Lilas",
		Ville:          "Paris",
		CodePostal:     "75011",
		Pays:           "France",
		Loyer:          450,
		MontantCharges: 50,
	}
}

func TestLogementCreate_ComputesMontantTotal(t *testing.T) {
	t.Parallel()

	svc := newLogementService(newFakeLogementRepo(), newFakeSouscriptionRepo())
	logement, err := svc.Create(context.Background(), adminActor(), validLogementInput())
	require.NoError(t, err)
	require.Equal(t, 500.0, logement.MontantTotal)
	require.Equal(t, domain.LogementDisponible, logement.Statut)
}

func TestLogementCreate_ValidationErrors(t *testing.T) {
	t.Parallel()

	svc := newLogementService(newFakeLogementRepo(), newFakeSouscriptionRepo())
	input := validLogementInput()
	input.Titre = "ab"
	input.Ville = "X"
	input.Loyer = 60000

	_, err := svc.Create(context.Background(), adminActor(), input)
	require.Error(t, err)

	domainErr := util.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Contains(t, domainErr.Details, "titre")
	require.Contains(t, domainErr.Details, "ville")
	require.Contains(t, domainErr.Details, "loyer")
}

func TestLogementUpdate_RecomputesTotal(t *testing.T) {
	t.Parallel()

	svc := newLogementService(newFakeLogementRepo(), newFakeSouscriptionRepo())
	logement, err := svc.Create(context.Background(), adminActor(), validLogementInput())
	require.NoError(t, err)

	input := validLogementInput()
	input.Loyer = 600
	input.MontantCharges = 75
	updated, err := svc.Update(context.Background(), adminActor(), logement.ID, input)
	require.NoError(t, err)
	require.Equal(t, 675.0, updated.MontantTotal)
}

func TestLogementDelete_BlockedByActiveSouscription(t *testing.T) {
	t.Parallel()

	logements := newFakeLogementRepo()
	souscriptions := newFakeSouscriptionRepo()
	svc := newLogementService(logements, souscriptions)

	logement, err := svc.Create(context.Background(), adminActor(), validLogementInput())
	require.NoError(t, err)

	require.NoError(t, souscriptions.Create(context.Background(), &domain.Souscription{
		Reference:  "ATT-TEST000000000001",
		LogementID: logement.ID,
		Statut:     domain.SouscriptionAttenteLivraison,
	}))

	err = svc.Delete(context.Background(), adminActor(), logement.ID)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", util.ToDomainError(err).Code)

	// closing the subscription frees the unit
	stored, err := souscriptions.GetByID(context.Background(), 1)
	require.NoError(t, err)
	stored.Statut = domain.SouscriptionCloture
	require.NoError(t, souscriptions.Update(context.Background(), stored))
	require.NoError(t, svc.Delete(context.Background(), adminActor(), logement.ID))
}

func TestLogementStats_TauxOccupation(t *testing.T) {
	t.Parallel()

	logements := newFakeLogementRepo()
	svc := newLogementService(logements, newFakeSouscriptionRepo())

	for _, statut := range []domain.StatutLogement{
		domain.LogementDisponible,
		domain.LogementOccupe,
		domain.LogementOccupe,
		domain.LogementMaintenance,
	} {
		input := validLogementInput()
		input.Statut = &statut
		_, err := svc.Create(context.Background(), adminActor(), input)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Total)
	require.Equal(t, int64(1), stats.Disponibles)
	require.Equal(t, int64(2), stats.Occupes)
	require.Equal(t, int64(1), stats.Maintenance)
	require.InDelta(t, 50.0, stats.TauxOccupation, 0.001)
}

func TestLogementDisponibles_FiltersByVille(t *testing.T) {
	t.Parallel()

	svc := newLogementService(newFakeLogementRepo(), newFakeSouscriptionRepo())

	paris := validLogementInput()
	_, err := svc.Create(context.Background(), adminActor(), paris)
	require.NoError(t, err)

	lyon := validLogementInput()
	lyon.Ville = "Lyon"
	_, err = svc.Create(context.Background(), adminActor(), lyon)
	require.NoError(t, err)

	occupied := validLogementInput()
	statut := domain.LogementOccupe
	occupied.Statut = &statut
	_, err = svc.Create(context.Background(), adminActor(), occupied)
	require.NoError(t, err)

	result, err := svc.Disponibles(context.Background(), "par", 50, 0)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Paris", result[0].Ville)
}
