package dto

import (
	"time"

	"github.com/spec-kit/boaz-housing/internal/service"
)

// WizardStartRequest optionally binds an existing souscription so the
// final submit updates instead of creating.
type WizardStartRequest struct {
	SouscriptionID *int64 `json:"souscription_id"`
}

// WizardStepRequest carries the fields of the current step. Absent
// fields leave the draft untouched.
type WizardStepRequest struct {
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

	ServiceIDs []int64 `json:"service_ids"`
}

// ToData converts the wire payload into wizard data, parsing dates.
func (r WizardStepRequest) ToData() (service.WizardData, error) {
	data := service.WizardData{
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
		ServiceIDs:           r.ServiceIDs,
	}
	var err error
	if data.DateNaissanceClient, err = ParseDate(r.DateNaissanceClient); err != nil {
		return data, err
	}
	if data.DateArriveePrevue, err = ParseDate(r.DateArriveePrevue); err != nil {
		return data, err
	}
	if data.DateEntreePrevue, err = ParseDate(r.DateEntreePrevue); err != nil {
		return data, err
	}
	return data, nil
}

// WizardSearchRequest carries a housing search term.
type WizardSearchRequest struct {
	Term string `json:"term"`
}

// WizardDraftResponse is the draft snapshot returned by every wizard
// endpoint.
type WizardDraftResponse struct {
	ID             string             `json:"id"`
	Step           int                `json:"step"`
	SouscriptionID int64              `json:"souscription_id,omitempty"`
	Data           WizardStepRequest  `json:"data"`
	SearchTerm     string             `json:"search_term,omitempty"`
	SearchResults  []LogementResponse `json:"search_results"`
	ProformaReady  bool               `json:"proforma_ready"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

// FromWizardDraft maps the service snapshot.
func FromWizardDraft(view *service.WizardDraftView) WizardDraftResponse {
	return WizardDraftResponse{
		ID:             view.ID,
		Step:           view.Step,
		SouscriptionID: view.SouscriptionID,
		Data: WizardStepRequest{
			NomClient:            view.Data.NomClient,
			PrenomClient:         view.Data.PrenomClient,
			EmailClient:          view.Data.EmailClient,
			DateNaissanceClient:  formatDate(view.Data.DateNaissanceClient),
			VilleNaissanceClient: view.Data.VilleNaissanceClient,
			PaysNaissanceClient:  view.Data.PaysNaissanceClient,
			NationaliteClient:    view.Data.NationaliteClient,
			PaysDestination:      view.Data.PaysDestination,
			DateArriveePrevue:    formatDate(view.Data.DateArriveePrevue),
			EcoleUniversite:      view.Data.EcoleUniversite,
			Filiere:              view.Data.Filiere,
			PaysEcole:            view.Data.PaysEcole,
			VilleEcole:           view.Data.VilleEcole,
			CodePostalEcole:      view.Data.CodePostalEcole,
			AdresseEcole:         view.Data.AdresseEcole,
			LogementID:           view.Data.LogementID,
			DateEntreePrevue:     formatDate(view.Data.DateEntreePrevue),
			DureeLocationMois:    view.Data.DureeLocationMois,
			ServiceIDs:           view.Data.ServiceIDs,
		},
		SearchTerm:    view.SearchTerm,
		SearchResults: FromLogements(view.SearchResults),
		ProformaReady: view.ProformaReady,
		ExpiresAt:     view.ExpiresAt,
	}
}
