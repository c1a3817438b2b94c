package dto

import (
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
)

// RegisterRequest defines the structure for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// LogoutRequest carries the claims of the token being revoked.
type LogoutRequest struct {
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// OnboardRequest fills the profile used as the default invoice issuer.
type OnboardRequest struct {
	FirstName string    `json:"firstName" validate:"notblank,max=100"`
	LastName  string    `json:"lastName" validate:"notblank,max=100"`
	Address   string    `json:"address" validate:"notblank,max=500"`
	UserId    uuid.UUID `json:"-"`
}

type GetUserByIdRequest struct {
	ID uuid.UUID `json:"-"`
}

type GetUserByEmailRequest struct {
	Email string `json:"-"`
}

// CreateUserRequest is the repository-level insert; the password is already hashed.
type CreateUserRequest struct {
	Email        string
	PasswordHash string
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Address   string    `json:"address"`
	Onboarded bool      `json:"onboarded"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Address:   u.Address,
		Onboarded: u.Onboarded(),
		CreatedAt: u.CreatedAt,
	}
}
