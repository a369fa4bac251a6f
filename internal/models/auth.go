package models

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=admin teacher student"`
	BirthDate string `json:"birth_date"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens. The token carries
// subject id, name, email and role and nothing else; once issued it stays
// valid for its full lifetime.
type JWTClaims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Role  UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric subject claim. Zero means a malformed subject.
func (c *JWTClaims) UserID() int {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0
	}
	return id
}
