package events

import (
	"time"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// EventType enumerates supported event identifiers. Every mutation in the
// logement and souscription services publishes one of these; cache
// invalidation and notifications subscribe instead of re-fetching on a
// counter.
type EventType string

const (
	EventSouscriptionCreated       EventType = "souscription_created"
	EventSouscriptionUpdated       EventType = "souscription_updated"
	EventSouscriptionStatusChanged EventType = "souscription_status_changed"
	EventSouscriptionDeleted       EventType = "souscription_deleted"
	EventProformaSent              EventType = "proforma_sent"
	EventLogementCreated           EventType = "logement_created"
	EventLogementUpdated           EventType = "logement_updated"
	EventLogementStatusChanged     EventType = "logement_status_changed"
	EventLogementDeleted           EventType = "logement_deleted"
)

// Actor identifies who triggered an event.
type Actor struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID int64       `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SouscriptionStatusChangedPayload payload.
type SouscriptionStatusChangedPayload struct {
	Reference string                    `json:"reference"`
	OldStatut domain.StatutSouscription `json:"old_statut"`
	NewStatut domain.StatutSouscription `json:"new_statut"`
	Comment   string                    `json:"comment,omitempty"`
}

// SouscriptionCreatedPayload payload.
type SouscriptionCreatedPayload struct {
	Reference   string `json:"reference"`
	EmailClient string `json:"email_client"`
	LogementID  int64  `json:"logement_id"`
}

// LogementStatusChangedPayload payload.
type LogementStatusChangedPayload struct {
	OldStatut domain.StatutLogement `json:"old_statut"`
	NewStatut domain.StatutLogement `json:"new_statut"`
}

// ProformaSentPayload payload.
type ProformaSentPayload struct {
	Reference   string `json:"reference"`
	EmailClient string `json:"email_client"`
}
