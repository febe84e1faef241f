package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const servicesFixture = `{
  "services": [
    {"id": 1, "nom": "Attestation de logement", "slug": "attestation-logement", "tarif": 30000, "devise": "FCFA", "active": true},
    {"id": 2, "nom": "Assurance habitation", "slug": "assurance-habitation", "tarif": 15000, "devise": "FCFA", "active": true},
    {"id": 3, "nom": "Ancien service", "slug": "ancien-service", "tarif": 5000, "devise": "FCFA", "active": false}
  ]
}`

const organisationFixture = `{
  "nom": "Boaz-Housing",
  "ville": "Douala",
  "pays": "Cameroun",
  "email": "contact@boaz-housing.com"
}`

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	servicesFile := filepath.Join(dir, "services.json")
	organisationFile := filepath.Join(dir, "organisation.json")
	require.NoError(t, os.WriteFile(servicesFile, []byte(servicesFixture), 0o600))
	require.NoError(t, os.WriteFile(organisationFile, []byte(organisationFixture), 0o600))
	return servicesFile, organisationFile
}

func TestCatalog_ListActiveOnly(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFixtures(t))
	require.NoError(t, err)

	require.Len(t, c.List(true), 2)
	require.Len(t, c.List(false), 3)
}

func TestCatalog_Lookups(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFixtures(t))
	require.NoError(t, err)

	svc := c.GetByID(1)
	require.NotNil(t, svc)
	require.Equal(t, "Attestation de logement", svc.Nom)

	svc = c.GetBySlug("  Assurance-Habitation ")
	require.NotNil(t, svc)
	require.Equal(t, int64(2), svc.ID)

	require.Nil(t, c.GetByID(99))
	require.Nil(t, c.GetBySlug("inconnu"))
}

func TestCatalog_Total(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFixtures(t))
	require.NoError(t, err)

	require.Equal(t, float64(45000), c.Total([]int64{1, 2}))
	// unknown ids are skipped, not an error
	require.Equal(t, float64(30000), c.Total([]int64{1, 99}))
	require.Equal(t, float64(0), c.Total(nil))
}

func TestCatalog_Organisation(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFixtures(t))
	require.NoError(t, err)

	org := c.Organisation()
	require.Equal(t, "Boaz-Housing", org.Nom)
	require.Equal(t, "Cameroun", org.Pays)
}

func TestCatalog_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("does-not-exist.json", "also-missing.json")
	require.Error(t, err)
}
