package domain

import "time"

// StatutLogement enumerates lifecycle states for rental units.
type StatutLogement string

const (
	LogementDisponible  StatutLogement = "disponible"
	LogementOccupe      StatutLogement = "occupe"
	LogementMaintenance StatutLogement = "maintenance"
)

// ValidStatutLogement reports whether a raw status belongs to the enum.
func ValidStatutLogement(raw string) bool {
	switch StatutLogement(raw) {
	case LogementDisponible, LogementOccupe, LogementMaintenance:
		return true
	}
	return false
}

// Logement is a rental housing unit. MontantTotal is derived server-side
// and must always equal Loyer + MontantCharges.
type Logement struct {
	ID             int64
	Titre          string
	Description    string
	Adresse        string
	Ville          string
	CodePostal     string
	Pays           string
	Loyer          float64
	MontantCharges float64
	MontantTotal   float64
	Statut         StatutLogement
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// LogementStats aggregates unit counts by status.
type LogementStats struct {
	Total          int64   `json:"total"`
	Disponibles    int64   `json:"disponibles"`
	Occupes        int64   `json:"occupes"`
	Maintenance    int64   `json:"maintenance"`
	TauxOccupation float64 `json:"taux_occupation"`
}
