package auth

import (
	"github.com/servanahq/servana-backend/internal/users"
	"github.com/servanahq/servana-backend/pkg/enums"
)

// SignUpRequest captures the payload for account creation.
type SignUpRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	FullName string     `json:"full_name" validate:"required"`
	Role     enums.Role `json:"role,omitempty"`
}

// SignInRequest captures the credentials sent to the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse contains the tokens and user produced by a successful
// sign-in or sign-up.
type SessionResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Role         enums.Role     `json:"role"`
	User         *users.UserDTO `json:"user,omitempty"`
}
