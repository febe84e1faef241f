package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/service"
)

const dateLayout = "2006-01-02"

// ParseDate parses the wire date format used for all date-only fields.
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &parsed, nil
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(dateLayout)
}

// SouscriptionRequest payload for create/update. Dates travel as
// YYYY-MM-DD strings.
type SouscriptionRequest struct {
	NomClient            string `json:"nom_client"`
	PrenomClient         string `json:"prenom_client"`
	EmailClient          string `json:"email_client"`
	DateNaissanceClient  string `json:"date_naissance_client"`
	VilleNaissanceClient string `json:"ville_naissance_client"`
	PaysNaissanceClient  string `json:"pays_naissance_client"`
	NationaliteClient    string `json:"nationalite_client"`
	PaysDestination      string `json:"pays_destination"`
	DateArriveePrevue    string `json:"date_arrivee_prevue"`

	EcoleUniversite string `json:"ecole_universite"`
	Filiere         string `json:"filiere"`
	PaysEcole       string `json:"pays_ecole"`
	VilleEcole      string `json:"ville_ecole"`
	CodePostalEcole string `json:"code_postal_ecole"`
	AdresseEcole    string `json:"adresse_ecole"`

	LogementID        int64  `json:"logement_id"`
	DateEntreePrevue  string `json:"date_entree_prevue"`
	DureeLocationMois int    `json:"duree_location_mois"`
}

// ToInput converts the wire payload into the service input, parsing
// dates.
func (r SouscriptionRequest) ToInput() (service.SouscriptionInput, error) {
	input := service.SouscriptionInput{
		NomClient:            r.NomClient,
		PrenomClient:         r.PrenomClient,
		EmailClient:          r.EmailClient,
		VilleNaissanceClient: r.VilleNaissanceClient,
		PaysNaissanceClient:  r.PaysNaissanceClient,
		NationaliteClient:    r.NationaliteClient,
		PaysDestination:      r.PaysDestination,
		EcoleUniversite:      r.EcoleUniversite,
		Filiere:              r.Filiere,
		PaysEcole:            r.PaysEcole,
		VilleEcole:           r.VilleEcole,
		CodePostalEcole:      r.CodePostalEcole,
		AdresseEcole:         r.AdresseEcole,
		LogementID:           r.LogementID,
		DureeLocationMois:    r.DureeLocationMois,
	}
	var err error
	if input.DateNaissanceClient, err = ParseDate(r.DateNaissanceClient); err != nil {
		return input, err
	}
	if input.DateArriveePrevue, err = ParseDate(r.DateArriveePrevue); err != nil {
		return input, err
	}
	if input.DateEntreePrevue, err = ParseDate(r.DateEntreePrevue); err != nil {
		return input, err
	}
	return input, nil
}

// SouscriptionStatutRequest payload for PATCH statut.
type SouscriptionStatutRequest struct {
	Statut  string `json:"statut"`
	Comment string `json:"comment"`
}

// ProformaRequest selects the catalog services to price.
type ProformaRequest struct {
	ServiceIDs []int64 `json:"service_ids"`
}

// SouscriptionResponse is the public shape of a subscription.
type SouscriptionResponse struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`

	NomClient            string `json:"nom_client"`
	PrenomClient         string `json:"prenom_client"`
	EmailClient          string `json:"email_client"`
	DateNaissanceClient  string `json:"date_naissance_client,omitempty"`
	VilleNaissanceClient string `json:"ville_naissance_client,omitempty"`
	PaysNaissanceClient  string `json:"pays_naissance_client,omitempty"`
	NationaliteClient    string `json:"nationalite_client,omitempty"`
	PaysDestination      string `json:"pays_destination,omitempty"`
	DateArriveePrevue    string `json:"date_arrivee_prevue,omitempty"`

	EcoleUniversite string `json:"ecole_universite,omitempty"`
	Filiere         string `json:"filiere,omitempty"`
	PaysEcole       string `json:"pays_ecole,omitempty"`
	VilleEcole      string `json:"ville_ecole,omitempty"`
	CodePostalEcole string `json:"code_postal_ecole,omitempty"`
	AdresseEcole    string `json:"adresse_ecole,omitempty"`

	LogementID        int64             `json:"logement_id"`
	Logement          *LogementResponse `json:"logement,omitempty"`
	DateEntreePrevue  string            `json:"date_entree_prevue,omitempty"`
	DureeLocationMois int               `json:"duree_location_mois"`

	Statut    string     `json:"statut"`
	Actions   []string   `json:"actions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FromSouscription maps the domain model. When a role is supplied the
// response carries the workflow actions visible to that role.
func FromSouscription(souscription *domain.Souscription, role *domain.Role) SouscriptionResponse {
	response := SouscriptionResponse{
		ID:                   souscription.ID,
		Reference:            souscription.Reference,
		NomClient:            souscription.NomClient,
		PrenomClient:         souscription.PrenomClient,
		EmailClient:          souscription.EmailClient,
		DateNaissanceClient:  formatDate(souscription.DateNaissanceClient),
		VilleNaissanceClient: souscription.VilleNaissanceClient,
		PaysNaissanceClient:  souscription.PaysNaissanceClient,
		NationaliteClient:    souscription.NationaliteClient,
		PaysDestination:      souscription.PaysDestination,
		DateArriveePrevue:    formatDate(souscription.DateArriveePrevue),
		EcoleUniversite:      souscription.EcoleUniversite,
		Filiere:              souscription.Filiere,
		PaysEcole:            souscription.PaysEcole,
		VilleEcole:           souscription.VilleEcole,
		CodePostalEcole:      souscription.CodePostalEcole,
		AdresseEcole:         souscription.AdresseEcole,
		LogementID:           souscription.LogementID,
		DateEntreePrevue:     formatDate(souscription.DateEntreePrevue),
		DureeLocationMois:    souscription.DureeLocationMois,
		Statut:               string(souscription.Statut),
		CreatedAt:            souscription.CreatedAt,
		UpdatedAt:            souscription.UpdatedAt,
	}
	if souscription.Logement != nil {
		logement := FromLogement(souscription.Logement)
		response.Logement = &logement
	}
	if role != nil {
		for _, action := range domain.AllowedActions(*role, souscription.Statut) {
			response.Actions = append(response.Actions, string(action))
		}
	}
	return response
}

// FromSouscriptions maps a slice.
func FromSouscriptions(souscriptions []domain.Souscription, role *domain.Role) []SouscriptionResponse {
	result := make([]SouscriptionResponse, 0, len(souscriptions))
	for i := range souscriptions {
		result = append(result, FromSouscription(&souscriptions[i], role))
	}
	return result
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID             int64     `json:"id"`
	OldStatut      string    `json:"old_statut"`
	NewStatut      string    `json:"new_statut"`
	ChangedByEmail string    `json:"changed_by_email"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromHistory maps a slice of audit entries.
func FromHistory(entries []domain.SouscriptionHistory) []HistoryResponse {
	result := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, HistoryResponse{
			ID:             entry.ID,
			OldStatut:      string(entry.OldStatut),
			NewStatut:      string(entry.NewStatut),
			ChangedByEmail: entry.ChangedByEmail,
			Comment:        entry.Comment,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return result
}
