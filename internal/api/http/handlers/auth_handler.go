package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/dto"
	"github.com/spec-kit/boaz-housing/internal/auth"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/internal/service"
	apperrors "github.com/spec-kit/boaz-housing/pkg/util"
)

// AuthHandler exposes login, logout, refresh and account management.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// actorFromContext builds the event actor from the authenticated
// principal.
func actorFromContext(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return events.Actor{}
	}
	return events.Actor{Email: principal.User.Email, Role: principal.User.Role}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.FromUser(result.User),
			"auth": dto.AuthResponse{
				Token:     result.Token,
				ExpiresAt: result.ExpiresAt,
				Redirect:  result.HomeRoute,
			},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.SessionID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Refresh handles POST /auth/refresh: it re-reads the account behind the
// session and forces a logout when the account is gone or deactivated.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Refresh(c.UserContext(), principal.SessionID, principal.User.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.FromUser(user)}})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.FromUser(principal.User)}})
}

// Redirect handles GET /auth/redirect: it resolves the caller's home
// dashboard route from their role.
func (h *AuthHandler) Redirect(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": principal.User.Role.HomeRoute()}})
}

// CreateUser handles POST /users.
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	user, err := h.auth.CreateUser(c.UserContext(), req.Email, req.Nom, req.Prenom, req.Password, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"user": dto.FromUser(user)}})
}

// GetUserByEmail handles GET /users/by-email/:email.
func (h *AuthHandler) GetUserByEmail(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return apperrors.NewValidationError("invalid email parameter", nil)
	}
	user, err := h.auth.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.FromUser(user)}})
}

// ListUsers handles GET /users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": dto.FromUsers(users)}})
}
