package dto

import (
	"time"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest payload for registering a back-office account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	HomeRoute string `json:"home_route"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Redirect  string    `json:"redirect"`
}

// FromUser maps the domain model.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nom:       user.Nom,
		Prenom:    user.Prenom,
		Role:      string(user.Role),
		Active:    user.Active,
		HomeRoute: user.Role.HomeRoute(),
	}
}

// FromUsers maps a slice.
func FromUsers(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, FromUser(&users[i]))
	}
	return result
}
