package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/dto"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/internal/service"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// LogementsHandler exposes rental-unit endpoints.
type LogementsHandler struct {
	logements *service.LogementService
	stats     *service.StatsService
}

// NewLogementsHandler constructs handler.
func NewLogementsHandler(logements *service.LogementService, stats *service.StatsService) *LogementsHandler {
	return &LogementsHandler{logements: logements, stats: stats}
}

func logementInputFromRequest(req dto.LogementRequest) (service.LogementInput, error) {
	input := service.LogementInput{
		Titre:          req.Titre,
		Description:    req.Description,
		Adresse:        req.Adresse,
		Ville:          req.Ville,
		CodePostal:     req.CodePostal,
		Pays:           req.Pays,
		Loyer:          req.Loyer,
		MontantCharges: req.MontantCharges,
	}
	if req.Statut != nil {
		if !domain.ValidStatutLogement(*req.Statut) {
			return input, apperrors.NewValidationError("unknown statut", map[string]any{"statut": *req.Statut})
		}
		statut := domain.StatutLogement(*req.Statut)
		input.Statut = &statut
	}
	return input, nil
}

// List handles GET /logements.
func (h *LogementsHandler) List(c *fiber.Ctx) error {
	filter := repository.LogementFilter{
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("statut"); raw != "" {
		if !domain.ValidStatutLogement(raw) {
			return apperrors.NewValidationError("unknown statut", map[string]any{"statut": raw})
		}
		statut := domain.StatutLogement(raw)
		filter.Statut = &statut
	}
	if ville := c.Query("ville"); ville != "" {
		filter.Ville = &ville
	}

	logements, err := h.logements.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logements": dto.FromLogements(logements)}})
}

// Disponibles handles GET /logements/disponibles.
func (h *LogementsHandler) Disponibles(c *fiber.Ctx) error {
	logements, err := h.logements.Disponibles(c.UserContext(), c.Query("ville"), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logements": dto.FromLogements(logements)}})
}

// Stats handles GET /logements/stats, served from the Redis cache.
func (h *LogementsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"stats": stats}})
}

// Get handles GET /logements/:id.
func (h *LogementsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	logement, err := h.logements.GetByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logement": dto.FromLogement(logement)}})
}

// Create handles POST /logements.
func (h *LogementsHandler) Create(c *fiber.Ctx) error {
	var req dto.LogementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := logementInputFromRequest(req)
	if err != nil {
		return err
	}
	logement, err := h.logements.Create(c.UserContext(), actorFromContext(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"logement": dto.FromLogement(logement)}})
}

// Update handles PUT /logements/:id.
func (h *LogementsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.LogementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := logementInputFromRequest(req)
	if err != nil {
		return err
	}
	logement, err := h.logements.Update(c.UserContext(), actorFromContext(c), int64(id), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logement": dto.FromLogement(logement)}})
}

// ChangerStatut handles PATCH /logements/:id/statut.
func (h *LogementsHandler) ChangerStatut(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.LogementStatutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	logement, err := h.logements.ChangerStatut(c.UserContext(), actorFromContext(c), int64(id), domain.StatutLogement(req.Statut))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logement": dto.FromLogement(logement)}})
}

// Delete handles DELETE /logements/:id.
func (h *LogementsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	if err := h.logements.Delete(c.UserContext(), actorFromContext(c), int64(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
