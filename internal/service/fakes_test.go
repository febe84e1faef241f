package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/boaz-housing/internal/catalog"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/repository"
)

type fakeLogementRepo struct {
	mu        sync.Mutex
	nextID    int64
	items     map[int64]domain.Logement
	listCalls int
}

func newFakeLogementRepo() *fakeLogementRepo {
	return &fakeLogementRepo{items: map[int64]domain.Logement{}}
}

func (f *fakeLogementRepo) Create(_ context.Context, logement *domain.Logement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	logement.ID = f.nextID
	logement.CreatedAt = time.Now()
	f.items[logement.ID] = *logement
	return nil
}

func (f *fakeLogementRepo) Update(_ context.Context, logement *domain.Logement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[logement.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.items[logement.ID] = *logement
	return nil
}

func (f *fakeLogementRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeLogementRepo) GetByID(_ context.Context, id int64) (*domain.Logement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := item
	return &copy, nil
}

func (f *fakeLogementRepo) ListWithFilter(_ context.Context, filter repository.LogementFilter) ([]domain.Logement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var result []domain.Logement
	for _, item := range f.items {
		if filter.Statut != nil && item.Statut != *filter.Statut {
			continue
		}
		if filter.Ville != nil && !strings.Contains(strings.ToLower(item.Ville), strings.ToLower(strings.TrimSpace(*filter.Ville))) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (f *fakeLogementRepo) CountByStatut(_ context.Context) (map[domain.StatutLogement]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[domain.StatutLogement]int64{}
	for _, item := range f.items {
		counts[item.Statut]++
	}
	return counts, nil
}

func (f *fakeLogementRepo) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeSouscriptionRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Souscription

	// createStarted/createRelease, when set, turn Create into a
	// rendezvous so tests can hold a submit in flight.
	createStarted chan struct{}
	createRelease chan struct{}
}

func newFakeSouscriptionRepo() *fakeSouscriptionRepo {
	return &fakeSouscriptionRepo{items: map[int64]domain.Souscription{}}
}

func (f *fakeSouscriptionRepo) Create(_ context.Context, souscription *domain.Souscription) error {
	if f.createStarted != nil {
		f.createStarted <- struct{}{}
		<-f.createRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	souscription.ID = f.nextID
	souscription.CreatedAt = time.Now()
	stored := *souscription
	stored.Logement = nil
	f.items[souscription.ID] = stored
	return nil
}

func (f *fakeSouscriptionRepo) Update(_ context.Context, souscription *domain.Souscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[souscription.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *souscription
	stored.Logement = nil
	f.items[souscription.ID] = stored
	return nil
}

func (f *fakeSouscriptionRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeSouscriptionRepo) GetByID(_ context.Context, id int64) (*domain.Souscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := item
	return &copy, nil
}

func (f *fakeSouscriptionRepo) GetByReference(_ context.Context, reference string) (*domain.Souscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.Reference == reference {
			copy := item
			return &copy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSouscriptionRepo) ListWithFilter(_ context.Context, filter repository.SouscriptionFilter) ([]domain.Souscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Souscription
	for _, item := range f.items {
		if filter.Statut != nil && item.Statut != *filter.Statut {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (f *fakeSouscriptionRepo) CountActiveByLogement(_ context.Context, logementID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, item := range f.items {
		if item.LogementID == logementID && item.Statut != domain.SouscriptionCloture {
			count++
		}
	}
	return count, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.SouscriptionHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.SouscriptionHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListBySouscription(_ context.Context, souscriptionID int64, _, _ int) ([]domain.SouscriptionHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.SouscriptionHistory
	for _, entry := range f.entries {
		if entry.SouscriptionID == souscriptionID {
			result = append(result, entry)
		}
	}
	return result, nil
}

const testServicesJSON = `{
  "services": [
    {"id": 1, "nom": "Attestation de logement", "slug": "attestation-logement", "tarif": 30000, "devise": "FCFA", "active": true},
    {"id": 2, "nom": "Assurance habitation", "slug": "assurance-habitation", "tarif": 15000, "devise": "FCFA", "active": true},
    {"id": 3, "nom": "Service retire", "slug": "service-retire", "tarif": 5000, "devise": "FCFA", "active": false}
  ]
}`

const testOrganisationJSON = `{
  "nom": "Boaz-Housing",
  "adresse": "Rue 1234",
  "ville": "Douala",
  "code_postal": "00237",
  "pays": "Cameroun",
  "telephone": "+237 600 000 000",
  "email": "contact@boaz-housing.com"
}`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	servicesFile := filepath.Join(dir, "services.json")
	organisationFile := filepath.Join(dir, "organisation.json")
	require.NoError(t, os.WriteFile(servicesFile, []byte(testServicesJSON), 0o644))
	require.NoError(t, os.WriteFile(organisationFile, []byte(testOrganisationJSON), 0o644))
	cat, err := catalog.Load(servicesFile, organisationFile)
	require.NoError(t, err)
	return cat
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
