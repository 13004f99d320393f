package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username           string `json:"username" validate:"required,min=3,max=40"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6"`
	Region             string `json:"region" validate:"required"`
	EmailNotifications bool   `json:"email_notifications"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo is the public projection of a user.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Region   string   `json:"region"`
	Role     UserRole `json:"role"`
}

// JWTClaims carries the identity encoded in access tokens.
type JWTClaims struct {
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	Region   string   `json:"region"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsOfficial reports whether the claims belong to an official or admin account.
func (c *JWTClaims) IsOfficial() bool {
	if c == nil {
		return false
	}
	return c.Role == RoleOfficial || c.Role == RoleAdmin
}
