package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"field-backend/internal/auth"
	"field-backend/internal/models"
	"field-backend/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email is already registered")
)

type UserService struct {
	Users *repositories.UserRepository
	jwt   *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{Users: users, jwt: jwt}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if existing, _ := s.Users.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "inspector",
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials. Users with 2FA enabled get a short-lived
// temp token instead of a session token; the session token is issued
// only after VerifyTOTPLogin.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if user.TOTPEnabled {
		temp, err := s.jwt.GenerateTempToken(user)
		if err != nil {
			return nil, fmt.Errorf("failed to generate temp token: %w", err)
		}
		return &models.AuthResponse{RequiresTOTP: true, TempToken: temp, User: user}, nil
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// IssueSessionToken exchanges a validated temp token holder for a full
// session token. The TOTP code itself is checked by TOTPService.
func (s *UserService) IssueSessionToken(ctx context.Context, userID int) (*models.AuthResponse, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) ValidateTempToken(token string) (*auth.TempClaims, error) {
	return s.jwt.ValidateTempToken(token)
}
