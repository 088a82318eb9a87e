package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in access tokens.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// LoginRequest carries credentials for admin and teacher logins.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	IssuedAt    time.Time      `json:"issued_at"`
	Role        string         `json:"role"`
	Teacher     *PublicTeacher `json:"teacher,omitempty"`
}

// JWTClaims are the custom claims embedded in access tokens.
type JWTClaims struct {
	Role      string `json:"role"`
	Username  string `json:"username"`
	TeacherID int64  `json:"teacher_id,omitempty"`
	jwt.RegisteredClaims
}
