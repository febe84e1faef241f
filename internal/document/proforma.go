package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// ProformaInput carries everything printed on a proforma.
type ProformaInput struct {
	ClientNom    string
	ClientPrenom string
	ClientEmail  string
	Services     []domain.ServiceOffering
	Logement     *domain.Logement
	Organisation domain.Organisation
	IssuedAt     time.Time
}

// Proforma renders a priced preliminary document as PDF bytes.
func Proforma(input ProformaInput) ([]byte, error) {
	if len(input.Services) == 0 {
		return nil, fmt.Errorf("proforma requires at least one service")
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Proforma", false)
	pdf.AddPage()

	writeLetterhead(pdf, input.Organisation)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "PROFORMA", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", input.IssuedAt.Format("02/01/2006")), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("%s %s", input.ClientPrenom, input.ClientNom), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, input.ClientEmail, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if input.Logement != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "Logement", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, input.Logement.Titre, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%s, %s %s, %s",
			input.Logement.Adresse, input.Logement.CodePostal, input.Logement.Ville, input.Logement.Pays),
			"", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Loyer mensuel: %.2f + charges %.2f = %.2f",
			input.Logement.Loyer, input.Logement.MontantCharges, input.Logement.MontantTotal),
			"", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(120, 7, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Tarif", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var total float64
	devise := "FCFA"
	for _, svc := range input.Services {
		if svc.Devise != "" {
			devise = svc.Devise
		}
		pdf.CellFormat(120, 7, svc.Nom, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.0f %s", svc.Tarif, devise), "1", 1, "R", false, 0, "")
		total += svc.Tarif
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.0f %s", total, devise), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Document provisoire etabli avant engagement. Il ne constitue pas une facture.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render proforma: %w", err)
	}
	return buf.Bytes(), nil
}

func writeLetterhead(pdf *gofpdf.Fpdf, org domain.Organisation) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, org.Nom, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if org.Adresse != "" {
		pdf.CellFormat(0, 4, fmt.Sprintf("%s, %s %s", org.Adresse, org.CodePostal, org.Ville), "", 1, "L", false, 0, "")
	}
	if org.Pays != "" {
		pdf.CellFormat(0, 4, org.Pays, "", 1, "L", false, 0, "")
	}
	if org.Telephone != "" || org.Email != "" {
		pdf.CellFormat(0, 4, fmt.Sprintf("%s  %s", org.Telephone, org.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}
