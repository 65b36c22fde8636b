package auth

import "github.com/stylesense/stylesense-backend/internal/users"

// SignupRequest is the payload for account registration.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token carries the issued bearer token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Result is returned by both signup and login.
type Result struct {
	User  users.DTO `json:"user"`
	Token Token     `json:"token"`
}
