package dto

import (
	"time"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// LogementRequest payload for create/update. montant_total is derived
// server-side and silently ignored if sent.
type LogementRequest struct {
	Titre          string  `json:"titre"`
	Description    string  `json:"description"`
	Adresse        string  `json:"adresse"`
	Ville          string  `json:"ville"`
	CodePostal     string  `json:"code_postal"`
	Pays           string  `json:"pays"`
	Loyer          float64 `json:"loyer"`
	MontantCharges float64 `json:"montant_charges"`
	Statut         *string `json:"statut"`
}

// LogementStatutRequest payload for PATCH statut.
type LogementStatutRequest struct {
	Statut string `json:"statut"`
}

// LogementResponse is the public shape of a rental unit.
type LogementResponse struct {
	ID             int64      `json:"id"`
	Titre          string     `json:"titre"`
	Description    string     `json:"description"`
	Adresse        string     `json:"adresse"`
	Ville          string     `json:"ville"`
	CodePostal     string     `json:"code_postal"`
	Pays           string     `json:"pays"`
	Loyer          float64    `json:"loyer"`
	MontantCharges float64    `json:"montant_charges"`
	MontantTotal   float64    `json:"montant_total"`
	Statut         string     `json:"statut"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// FromLogement maps the domain model.
func FromLogement(logement *domain.Logement) LogementResponse {
	return LogementResponse{
		ID:             logement.ID,
		Titre:          logement.Titre,
		Description:    logement.Description,
		Adresse:        logement.Adresse,
		Ville:          logement.Ville,
		CodePostal:     logement.CodePostal,
		Pays:           logement.Pays,
		Loyer:          logement.Loyer,
		MontantCharges: logement.MontantCharges,
		MontantTotal:   logement.MontantTotal,
		Statut:         string(logement.Statut),
		CreatedAt:      logement.CreatedAt,
		UpdatedAt:      logement.UpdatedAt,
	}
}

// FromLogements maps a slice.
func FromLogements(logements []domain.Logement) []LogementResponse {
	result := make([]LogementResponse, 0, len(logements))
	for i := range logements {
		result = append(result, FromLogement(&logements[i]))
	}
	return result
}
