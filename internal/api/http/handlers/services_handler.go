package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/dto"
	"github.com/spec-kit/boaz-housing/internal/catalog"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// ServicesHandler exposes the file-backed service catalog.
type ServicesHandler struct {
	catalog *catalog.Catalog
}

// NewServicesHandler constructs handler.
func NewServicesHandler(cat *catalog.Catalog) *ServicesHandler {
	return &ServicesHandler{catalog: cat}
}

// List handles GET /services. Inactive offerings are included only when
// all=true.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	activeOnly := !c.QueryBool("all", false)
	services := h.catalog.List(activeOnly)
	return c.JSON(fiber.Map{"data": fiber.Map{"services": dto.FromServiceOfferings(services)}})
}

// Get handles GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	svc := h.catalog.GetByID(int64(id))
	if svc == nil {
		return apperrors.NewNotFound("service", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"service": dto.FromServiceOffering(*svc)}})
}

// GetBySlug handles GET /services/slug/:slug.
func (h *ServicesHandler) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	svc := h.catalog.GetBySlug(slug)
	if svc == nil {
		return apperrors.NewNotFound("service", map[string]any{"slug": slug})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"service": dto.FromServiceOffering(*svc)}})
}

// CalculateTotal handles POST /services/calculate-total: it sums the
// tarifs of the selected offerings. Unknown ids are skipped.
func (h *ServicesHandler) CalculateTotal(c *fiber.Ctx) error {
	var req dto.CalculateTotalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.ServiceIDs) == 0 {
		return apperrors.NewValidationError("service_ids is required", nil)
	}

	devise := "FCFA"
	for _, svc := range h.catalog.GetByIDs(req.ServiceIDs) {
		if svc.Devise != "" {
			devise = svc.Devise
			break
		}
	}
	return c.JSON(fiber.Map{"data": dto.CalculateTotalResponse{
		Total:  h.catalog.Total(req.ServiceIDs),
		Devise: devise,
	}})
}

// Organisation handles GET /organisation.
func (h *ServicesHandler) Organisation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"organisation": h.catalog.Organisation()}})
}
