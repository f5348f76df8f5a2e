// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Nombre            string   `json:"nombre"            validate:"required,min=1,max=100"`
	Apellido          string   `json:"apellido"          validate:"required,min=1,max=100"`
	Email             string   `json:"email"             validate:"required,email,max=255"`
	Password          string   `json:"password"          validate:"required,min=8,max=128"`
	Especializacion   string   `json:"especializacion"   validate:"required,min=1,max=200"`
	Responsabilidades []string `json:"responsabilidades" validate:"required,min=1,dive,required"`
	FotoPerfil        string   `json:"fotoPerfil"        validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

type UserResponse struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Especializacion string `json:"especializacion"`
	IsVerified      bool   `json:"isVerified"`
}

type TokenResponse struct {
	SessionToken string    `json:"sessionToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}

type VerifyResponse struct {
	AlreadyVerified bool         `json:"alreadyVerified"`
	User            UserResponse `json:"user"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}
