package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/dto"
	"github.com/spec-kit/boaz-housing/internal/auth"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/internal/service"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// maxReceiptBytes caps uploaded payment receipts.
const maxReceiptBytes = 10 << 20

// SouscriptionsHandler exposes the subscription workflow endpoints.
type SouscriptionsHandler struct {
	souscriptions *service.SouscriptionService
}

// NewSouscriptionsHandler constructs handler.
func NewSouscriptionsHandler(souscriptions *service.SouscriptionService) *SouscriptionsHandler {
	return &SouscriptionsHandler{souscriptions: souscriptions}
}

func callerRole(c *fiber.Ctx) *domain.Role {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil
	}
	role := principal.User.Role
	return &role
}

// List handles GET /souscriptions.
func (h *SouscriptionsHandler) List(c *fiber.Ctx) error {
	filter := repository.SouscriptionFilter{
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("statut"); raw != "" {
		if !domain.ValidStatutSouscription(raw) {
			return apperrors.NewValidationError("unknown statut", map[string]any{"statut": raw})
		}
		statut := domain.StatutSouscription(raw)
		filter.Statut = &statut
	}

	souscriptions, err := h.souscriptions.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscriptions": dto.FromSouscriptions(souscriptions, callerRole(c)),
	}})
}

// Get handles GET /souscriptions/:id.
func (h *SouscriptionsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	souscription, err := h.souscriptions.GetByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// GetByReference handles GET /souscriptions/by-reference/:reference.
func (h *SouscriptionsHandler) GetByReference(c *fiber.Ctx) error {
	souscription, err := h.souscriptions.GetByReference(c.UserContext(), c.Params("reference"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Create handles POST /souscriptions.
func (h *SouscriptionsHandler) Create(c *fiber.Ctx) error {
	var req dto.SouscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := req.ToInput()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	souscription, err := h.souscriptions.Create(c.UserContext(), actorFromContext(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Update handles PUT /souscriptions/:id.
func (h *SouscriptionsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.SouscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := req.ToInput()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	souscription, err := h.souscriptions.Update(c.UserContext(), actorFromContext(c), int64(id), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Payer handles POST /souscriptions/:id/payer. The request may carry a
// multipart "recu" file with the payment receipt.
func (h *SouscriptionsHandler) Payer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}

	var receiptName string
	var receipt []byte
	if file, err := c.FormFile("recu"); err == nil && file != nil {
		if file.Size > maxReceiptBytes {
			return apperrors.NewValidationError("receipt exceeds the size limit", map[string]any{"max_bytes": maxReceiptBytes})
		}
		opened, err := file.Open()
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("open receipt upload: %w", err))
		}
		defer opened.Close()
		receipt, err = io.ReadAll(opened)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("read receipt upload: %w", err))
		}
		receiptName = file.Filename
	}

	souscription, err := h.souscriptions.Payer(c.UserContext(), actorFromContext(c), int64(id), receiptName, receipt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Livrer handles POST /souscriptions/:id/livrer.
func (h *SouscriptionsHandler) Livrer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	souscription, err := h.souscriptions.Livrer(c.UserContext(), actorFromContext(c), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// ChangerStatut handles PATCH /souscriptions/:id/statut.
func (h *SouscriptionsHandler) ChangerStatut(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.SouscriptionStatutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	souscription, err := h.souscriptions.ChangerStatut(c.UserContext(), actorFromContext(c), int64(id), domain.StatutSouscription(req.Statut), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Delete handles DELETE /souscriptions/:id.
func (h *SouscriptionsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	if err := h.souscriptions.Delete(c.UserContext(), actorFromContext(c), int64(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// History handles GET /souscriptions/:id/history.
func (h *SouscriptionsHandler) History(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	entries, err := h.souscriptions.History(c.UserContext(), int64(id), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"history": dto.FromHistory(entries)}})
}

// Actions handles GET /souscriptions/:id/actions.
func (h *SouscriptionsHandler) Actions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	role := callerRole(c)
	if role == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	actions, err := h.souscriptions.Actions(c.UserContext(), *role, int64(id))
	if err != nil {
		return err
	}
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, string(action))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"actions": names}})
}

// GenerateProforma handles POST /souscriptions/:id/generate-proforma and
// streams the PDF back.
func (h *SouscriptionsHandler) GenerateProforma(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.ProformaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pdf, err := h.souscriptions.GenerateProforma(c.UserContext(), int64(id), req.ServiceIDs)
	if err != nil {
		return err
	}
	return sendPDF(c, fmt.Sprintf("proforma_%d.pdf", id), pdf)
}

// GenerateAttestation handles POST /souscriptions/:id/generate-attestation.
func (h *SouscriptionsHandler) GenerateAttestation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	pdf, err := h.souscriptions.GenerateAttestation(c.UserContext(), actorFromContext(c), int64(id))
	if err != nil {
		return err
	}
	return sendPDF(c, fmt.Sprintf("attestation_%d.pdf", id), pdf)
}

// EnvoyerProforma handles POST /souscriptions/:id/envoyer-proforma.
func (h *SouscriptionsHandler) EnvoyerProforma(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.ProformaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.souscriptions.EnvoyerProforma(c.UserContext(), actorFromContext(c), int64(id), req.ServiceIDs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

func sendPDF(c *fiber.Ctx, filename string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
