package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

func sampleLogement() *domain.Logement {
	return &domain.Logement{
		ID:             1,
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
}

func TestProforma_ProducesPDF(t *testing.T) {
	t.Parallel()

	out, err := Proforma(ProformaInput{
		ClientNom:    "Ndiaye",
		ClientPrenom: "Awa",
		ClientEmail:  "awa@example.com",
		Services: []domain.ServiceOffering{
			{ID: 1, Nom: "Attestation de logement", Tarif: 30000, Devise: "FCFA", Active: true},
			{ID: 2, Nom: "Assurance habitation", Tarif: 15000, Devise: "FCFA", Active: true},
		},
		Logement:     sampleLogement(),
		Organisation: domain.Organisation{Nom: "Boaz-Housing", Ville: "Douala", Pays: "Cameroun"},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must be a PDF byte stream")
}

func TestProforma_RequiresServices(t *testing.T) {
	t.Parallel()

	_, err := Proforma(ProformaInput{ClientNom: "Ndiaye"})
	require.Error(t, err)
}

func TestAttestation_TwoPages(t *testing.T) {
	t.Parallel()

	birth := time.Date(2001, 4, 12, 0, 0, 0, 0, time.UTC)
	entry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out, err := Attestation(AttestationInput{
		Reference:         "ATT-ABCDEF0123456789",
		ClientNom:         "Ndiaye",
		ClientPrenom:      "Awa",
		DateNaissance:     &birth,
		VilleNaissance:    "Dakar",
		PaysNaissance:     "Senegal",
		Logement:          sampleLogement(),
		DateEntreePrevue:  &entry,
		DureeLocationMois: 12,
		Organisation:      domain.Organisation{Nom: "Boaz-Housing", Ville: "Douala"},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestAttestation_RequiresLogement(t *testing.T) {
	t.Parallel()

	_, err := Attestation(AttestationInput{Reference: "ATT-X"})
	require.Error(t, err)
}
