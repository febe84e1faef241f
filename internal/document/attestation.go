package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// AttestationInput carries everything printed on the two-part housing
// certificate (attestation de logement + attestation de prise en charge).
type AttestationInput struct {
	Reference         string
	ClientNom         string
	ClientPrenom      string
	DateNaissance     *time.Time
	VilleNaissance    string
	PaysNaissance     string
	Logement          *domain.Logement
	DateEntreePrevue  *time.Time
	DureeLocationMois int
	Organisation      domain.Organisation
	IssuedAt          time.Time
}

// Attestation renders the finalized housing certificate as PDF bytes.
func Attestation(input AttestationInput) ([]byte, error) {
	if input.Logement == nil {
		return nil, fmt.Errorf("attestation requires a logement")
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Attestation", false)

	// page 1: attestation de logement
	pdf.AddPage()
	writeLetterhead(pdf, input.Organisation)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 12, "ATTESTATION DE LOGEMENT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Reference: %s", input.Reference), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Nous soussignes, %s, attestons que %s %s%s dispose d'un logement situe a l'adresse suivante: %s, %s %s, %s.",
		input.Organisation.Nom,
		input.ClientPrenom, input.ClientNom,
		birthClause(input),
		input.Logement.Adresse, input.Logement.CodePostal, input.Logement.Ville, input.Logement.Pays,
	), "", "J", false)
	pdf.Ln(3)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Le logement est loue pour une duree de %d mois%s, pour un loyer mensuel de %.2f et un depot de garantie de %.2f.",
		input.DureeLocationMois,
		entryClause(input.DateEntreePrevue),
		input.Logement.Loyer, input.Logement.MontantCharges,
	), "", "J", false)
	writeSignature(pdf, input)

	// page 2: attestation de prise en charge
	pdf.AddPage()
	writeLetterhead(pdf, input.Organisation)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 12, "ATTESTATION DE PRISE EN CHARGE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Reference: %s", input.Reference), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Nous soussignes, %s, attestons prendre en charge l'hebergement de %s %s pour toute la duree de son sejour, soit %d mois.",
		input.Organisation.Nom,
		input.ClientPrenom, input.ClientNom,
		input.DureeLocationMois,
	), "", "J", false)
	writeSignature(pdf, input)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render attestation: %w", err)
	}
	return buf.Bytes(), nil
}

func birthClause(input AttestationInput) string {
	if input.DateNaissance == nil {
		return ""
	}
	clause := fmt.Sprintf(", ne(e) le %s", input.DateNaissance.Format("02/01/2006"))
	if input.VilleNaissance != "" {
		clause += fmt.Sprintf(" a %s", input.VilleNaissance)
	}
	if input.PaysNaissance != "" {
		clause += fmt.Sprintf(" (%s)", input.PaysNaissance)
	}
	return clause
}

func entryClause(entry *time.Time) string {
	if entry == nil {
		return ""
	}
	return fmt.Sprintf(" a compter du %s", entry.Format("02/01/2006"))
}

func writeSignature(pdf *gofpdf.Fpdf, input AttestationInput) {
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	place := input.Organisation.Ville
	if place == "" {
		place = input.Logement.Ville
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Fait a %s, le %s", place, input.IssuedAt.Format("02/01/2006")), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(0, 6, "La Direction", "", 1, "R", false, 0, "")
}
