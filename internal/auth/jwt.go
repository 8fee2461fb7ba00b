package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"field-backend/internal/config"
	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotTempToken = errors.New("token is not a pending-2fa token")
)

// tempTokenTTL bounds the window between the password step of login and
// the TOTP code entry.
const tempTokenTTL = 5 * time.Minute

const tempTokenType = "2fa_pending"

// Claims carry the session identity plus the two authorization bits the
// middleware checks on every request, so authorization never needs a
// user-table read.
type Claims struct {
	UserID              int    `json:"user_id"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	HasAccountantAccess bool   `json:"has_accountant_access"`
	IsActive            bool   `json:"is_active"`
	jwt.RegisteredClaims
}

// TempClaims is the half-authenticated token issued after a correct
// password when the account has 2FA enabled. It grants nothing except
// the right to present a TOTP code.
type TempClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret:     []byte(cfg.JWT.Secret),
		issuer:     cfg.JWT.Issuer,
		sessionTTL: time.Duration(cfg.JWT.ExpirationHours) * time.Hour,
	}
}

func (j *JWTManager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := timeutil.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    j.issuer,
	}
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return j.secret, nil
}

// GenerateToken issues a full session token for the user.
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID:              user.ID,
		Email:               user.Email,
		Role:                user.Role,
		HasAccountantAccess: user.HasAccountantAccess,
		IsActive:            user.IsActive,
		RegisteredClaims:    j.registered(j.sessionTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateToken parses and verifies a session token.
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateTempToken issues the short-lived pending-2fa token.
func (j *JWTManager) GenerateTempToken(user *models.User) (string, error) {
	claims := &TempClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Type:             tempTokenType,
		RegisteredClaims: j.registered(tempTokenTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateTempToken parses a pending-2fa token. A session token is
// rejected here: the type claim must match.
func (j *JWTManager) ValidateTempToken(tokenString string) (*TempClaims, error) {
	claims := &TempClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tempTokenType {
		return nil, ErrNotTempToken
	}
	return claims, nil
}
