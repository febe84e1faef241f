package domain

import "time"

// StatutSouscription enumerates lifecycle states for subscriptions.
// The graph is forward-only: ATTENTE_PAIEMENT -> ATTENTE_LIVRAISON -> LIVRE
// -> CLOTURE. CLOTURE is administratively set, never produced by the
// payer/livrer actions.
type StatutSouscription string

const (
	SouscriptionAttentePaiement  StatutSouscription = "ATTENTE_PAIEMENT"
	SouscriptionAttenteLivraison StatutSouscription = "ATTENTE_LIVRAISON"
	SouscriptionLivre            StatutSouscription = "LIVRE"
	SouscriptionCloture          StatutSouscription = "CLOTURE"
)

// ValidStatutSouscription reports whether a raw status belongs to the enum.
func ValidStatutSouscription(raw string) bool {
	switch StatutSouscription(raw) {
	case SouscriptionAttentePaiement, SouscriptionAttenteLivraison, SouscriptionLivre, SouscriptionCloture:
		return true
	}
	return false
}

var souscriptionTransitions = map[StatutSouscription][]StatutSouscription{
	SouscriptionAttentePaiement:  {SouscriptionAttenteLivraison},
	SouscriptionAttenteLivraison: {SouscriptionLivre},
	SouscriptionLivre:            {SouscriptionCloture},
	SouscriptionCloture:          {},
}

// CanTransition reports whether the status graph allows current -> next.
func CanTransition(current, next StatutSouscription) bool {
	for _, candidate := range souscriptionTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Souscription links a client to a Logement and carries the workflow status.
type Souscription struct {
	ID        int64
	Reference string

	NomClient            string
	PrenomClient         string
	EmailClient          string
	DateNaissanceClient  *time.Time
	VilleNaissanceClient string
	PaysNaissanceClient  string
	NationaliteClient    string
	PaysDestination      string
	DateArriveePrevue    *time.Time

	EcoleUniversite string
	Filiere         string
	PaysEcole       string
	VilleEcole      string
	CodePostalEcole string
	AdresseEcole    string

	LogementID        int64
	DateEntreePrevue  *time.Time
	DureeLocationMois int

	Statut    StatutSouscription
	CreatedAt time.Time
	UpdatedAt *time.Time

	Logement *Logement
}

// Editable reports whether the record may still be modified through the
// wizard. Edits stop once delivery has happened.
func (s *Souscription) Editable() bool {
	return s.Statut == SouscriptionAttentePaiement || s.Statut == SouscriptionAttenteLivraison
}

// SouscriptionAction enumerates the workflow actions offered on a
// subscription row.
type SouscriptionAction string

const (
	ActionModifier        SouscriptionAction = "modifier"
	ActionPayer           SouscriptionAction = "payer"
	ActionLivrer          SouscriptionAction = "livrer"
	ActionAttestation     SouscriptionAction = "attestation"
	ActionEnvoyerProforma SouscriptionAction = "envoyer_proforma"
	ActionSupprimer       SouscriptionAction = "supprimer"
)

// ActionAllowed is the role x status visibility predicate for workflow
// actions. It is evaluated per request and mirrors the server-side
// enforcement in the subscription service.
func ActionAllowed(action SouscriptionAction, role Role, statut StatutSouscription) bool {
	switch action {
	case ActionModifier:
		return statut == SouscriptionAttentePaiement || statut == SouscriptionAttenteLivraison
	case ActionPayer:
		return statut == SouscriptionAttentePaiement
	case ActionLivrer:
		return role == RoleAdminGenerale && statut == SouscriptionAttenteLivraison
	case ActionAttestation:
		return role == RoleAdminGenerale
	case ActionEnvoyerProforma:
		return true
	case ActionSupprimer:
		return true
	default:
		return false
	}
}

// AllowedActions lists the visible actions for a role on a given status,
// in stable display order.
func AllowedActions(role Role, statut StatutSouscription) []SouscriptionAction {
	all := []SouscriptionAction{
		ActionModifier,
		ActionPayer,
		ActionLivrer,
		ActionAttestation,
		ActionEnvoyerProforma,
		ActionSupprimer,
	}
	allowed := make([]SouscriptionAction, 0, len(all))
	for _, action := range all {
		if ActionAllowed(action, role, statut) {
			allowed = append(allowed, action)
		}
	}
	return allowed
}

// SouscriptionHistory records a single status change for audit display.
type SouscriptionHistory struct {
	ID             int64
	SouscriptionID int64
	OldStatut      StatutSouscription
	NewStatut      StatutSouscription
	ChangedByEmail string
	Comment        string
	CreatedAt      time.Time
}
