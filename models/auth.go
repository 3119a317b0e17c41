package models

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the role required for management endpoints
const RoleAdmin = "admin"

// LoginRequest is the body accepted by POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AdminClaims are the claims carried by an administrator bearer token.
// Subject holds the administrator ID.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
