package dto

import (
	"github.com/spec-kit/boaz-housing/internal/domain"
)

// ServiceResponse is one catalog offering.
type ServiceResponse struct {
	ID          int64   `json:"id"`
	Nom         string  `json:"nom"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Tarif       float64 `json:"tarif"`
	Devise      string  `json:"devise"`
	Active      bool    `json:"active"`
}

// FromServiceOffering maps a catalog entry.
func FromServiceOffering(svc domain.ServiceOffering) ServiceResponse {
	return ServiceResponse{
		ID:          svc.ID,
		Nom:         svc.Nom,
		Slug:        svc.Slug,
		Description: svc.Description,
		Tarif:       svc.Tarif,
		Devise:      svc.Devise,
		Active:      svc.Active,
	}
}

// FromServiceOfferings maps a slice.
func FromServiceOfferings(services []domain.ServiceOffering) []ServiceResponse {
	result := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, FromServiceOffering(svc))
	}
	return result
}

// CalculateTotalRequest selects the services to sum.
type CalculateTotalRequest struct {
	ServiceIDs []int64 `json:"service_ids"`
}

// CalculateTotalResponse carries the summed tarif.
type CalculateTotalResponse struct {
	Total  float64 `json:"total"`
	Devise string  `json:"devise"`
}
