package models

import "time"

type User struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	PasswordHash        string    `json:"-"` // Never expose in JSON
	Role                string    `json:"role"` // admin or inspector
	HasAccountantAccess bool      `json:"has_accountant_access"`
	TOTPEnabled         bool      `json:"totp_enabled"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
	// RequiresTOTP is set with a short-lived token when 2FA is enabled;
	// Token is then empty until the code is verified.
	RequiresTOTP bool   `json:"requires_totp,omitempty"`
	TempToken    string `json:"temp_token,omitempty"`
}
