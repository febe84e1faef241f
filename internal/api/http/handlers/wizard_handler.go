package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/dto"
	"github.com/spec-kit/boaz-housing/internal/service"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// WizardHandler exposes the server-held subscription wizard drafts.
type WizardHandler struct {
	wizard *service.WizardService
}

// NewWizardHandler constructs handler.
func NewWizardHandler(wizard *service.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// Start handles POST /wizard.
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	var req dto.WizardStartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	draft, err := h.wizard.Start(c.UserContext(), req.SouscriptionID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// Get handles GET /wizard/:draftId.
func (h *WizardHandler) Get(c *fiber.Ctx) error {
	draft, err := h.wizard.Get(c.Params("draftId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// Next handles POST /wizard/:draftId/next.
func (h *WizardHandler) Next(c *fiber.Ctx) error {
	var req dto.WizardStepRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	data, err := req.ToData()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	draft, err := h.wizard.Next(c.UserContext(), c.Params("draftId"), data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// Back handles POST /wizard/:draftId/back.
func (h *WizardHandler) Back(c *fiber.Ctx) error {
	draft, err := h.wizard.Back(c.Params("draftId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// SearchLogements handles POST /wizard/:draftId/search-logements. The
// lookup itself is debounced server-side; the response returns the draft
// snapshot immediately and results land on a later Get.
func (h *WizardHandler) SearchLogements(c *fiber.Ctx) error {
	var req dto.WizardSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	draft, err := h.wizard.SearchLogements(c.Params("draftId"), req.Term)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// RequestProforma handles POST /wizard/:draftId/proforma.
func (h *WizardHandler) RequestProforma(c *fiber.Ctx) error {
	draft, err := h.wizard.RequestProforma(c.Params("draftId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"draft": dto.FromWizardDraft(draft)}})
}

// Proforma handles GET /wizard/:draftId/proforma and streams the PDF.
func (h *WizardHandler) Proforma(c *fiber.Ctx) error {
	pdf, err := h.wizard.Proforma(c.Params("draftId"))
	if err != nil {
		return err
	}
	return sendPDF(c, "proforma_draft.pdf", pdf)
}

// Submit handles POST /wizard/:draftId/submit.
func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	souscription, err := h.wizard.Submit(c.UserContext(), actorFromContext(c), c.Params("draftId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"souscription": dto.FromSouscription(souscription, callerRole(c)),
	}})
}

// Abandon handles DELETE /wizard/:draftId.
func (h *WizardHandler) Abandon(c *fiber.Ctx) error {
	h.wizard.Abandon(c.Params("draftId"))
	return c.JSON(fiber.Map{"data": fiber.Map{"abandoned": true}})
}
