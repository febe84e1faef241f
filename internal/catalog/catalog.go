package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// Catalog serves the priced service offerings and organisation details
// from JSON documents shipped with the application. Files are read once
// and cached; Reload replaces the cache.
type Catalog struct {
	servicesFile     string
	organisationFile string

	mu           sync.RWMutex
	services     []domain.ServiceOffering
	organisation domain.Organisation
}

type servicesDoc struct {
	Services []domain.ServiceOffering `json:"services"`
}

// Load reads both documents and returns a ready catalog.
func Load(servicesFile, organisationFile string) (*Catalog, error) {
	c := &Catalog{servicesFile: servicesFile, organisationFile: organisationFile}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads both backing files.
func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.servicesFile)
	if err != nil {
		return fmt.Errorf("read services catalog: %w", err)
	}
	var doc servicesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse services catalog: %w", err)
	}

	raw, err = os.ReadFile(c.organisationFile)
	if err != nil {
		return fmt.Errorf("read organisation details: %w", err)
	}
	var org domain.Organisation
	if err := json.Unmarshal(raw, &org); err != nil {
		return fmt.Errorf("parse organisation details: %w", err)
	}

	c.mu.Lock()
	c.services = doc.Services
	c.organisation = org
	c.mu.Unlock()
	return nil
}

// List returns the offerings, optionally restricted to active ones.
func (c *Catalog) List(activeOnly bool) []domain.ServiceOffering {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]domain.ServiceOffering, 0, len(c.services))
	for _, svc := range c.services {
		if activeOnly && !svc.Active {
			continue
		}
		result = append(result, svc)
	}
	return result
}

// GetByID returns the offering with the given id, or nil.
func (c *Catalog) GetByID(id int64) *domain.ServiceOffering {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.services {
		if c.services[i].ID == id {
			svc := c.services[i]
			return &svc
		}
	}
	return nil
}

// GetBySlug returns the offering with the given slug, or nil.
func (c *Catalog) GetBySlug(slug string) *domain.ServiceOffering {
	clean := strings.ToLower(strings.TrimSpace(slug))
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.services {
		if strings.ToLower(strings.TrimSpace(c.services[i].Slug)) == clean {
			svc := c.services[i]
			return &svc
		}
	}
	return nil
}

// GetByIDs returns the offerings matching the given ids, skipping unknowns.
func (c *Catalog) GetByIDs(ids []int64) []domain.ServiceOffering {
	result := make([]domain.ServiceOffering, 0, len(ids))
	for _, id := range ids {
		if svc := c.GetByID(id); svc != nil {
			result = append(result, *svc)
		}
	}
	return result
}

// Total sums the tarifs of the given service ids.
func (c *Catalog) Total(ids []int64) float64 {
	var total float64
	for _, svc := range c.GetByIDs(ids) {
		total += svc.Tarif
	}
	return total
}

// Organisation returns the issuing-organisation details.
func (c *Catalog) Organisation() domain.Organisation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.organisation
}
