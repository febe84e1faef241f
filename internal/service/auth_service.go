package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/boaz-housing/internal/auth"
	"github.com/spec-kit/boaz-housing/internal/config"
	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/repository"
	"github.com/spec-kit/boaz-housing/pkg/util"
)

// AuthService coordinates login, logout and session refresh. A successful
// login mints a session document in the session store and a JWT bound to
// that session; everything user-facing afterwards reads the session, not
// the token claims.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore *auth.SessionStore
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionStore,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginResult carries everything the login handler returns to the caller.
type LoginResult struct {
	User      *domain.User
	SessionID string
	Token     string
	ExpiresAt time.Time
	HomeRoute string
}

// Login authenticates by email and password. Unknown email, wrong password
// and deactivated account all collapse into the same unauthorized error so
// the response does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, util.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.Active {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Store(ctx, sessionID, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(sessionID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:      user,
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
		HomeRoute: user.Role.HomeRoute(),
	}, nil
}

// Logout drops the session document. Logging out an already-expired
// session succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Refresh re-reads the account behind a live session and rewrites the
// session document. When the account has vanished or been deactivated the
// session is deleted and the caller is forced to log in again.
func (s *AuthService) Refresh(ctx context.Context, sessionID, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || !user.Active {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, util.NewUnauthorized("session no longer valid")
	}
	if err := s.sessions.Store(ctx, sessionID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser registers a back-office account.
func (s *AuthService) CreateUser(ctx context.Context, email, nom, prenom, password string, role domain.Role) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	fieldErrors := map[string]any{}
	if email == "" || !strings.Contains(email, "@") {
		fieldErrors["email"] = "valid email is required"
	}
	if len(password) < 8 {
		fieldErrors["password"] = "password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		return nil, util.NewValidationError("invalid user payload", fieldErrors)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Nom:          nom,
		Prenom:       prenom,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail looks an account up for the back office user list.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers pages through accounts.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
