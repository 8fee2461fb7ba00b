package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-backend/internal/config"
	"field-backend/internal/models"
)

func testManager(secret string) *JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.Issuer = "field-backend"
	cfg.JWT.ExpirationHours = 24
	return NewJWTManager(cfg)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	mgr := testManager("test-secret")
	user := &models.User{
		ID:                  7,
		Email:               "sara@example.com",
		Role:                "inspector",
		HasAccountantAccess: true,
		IsActive:            true,
	}

	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "sara@example.com", claims.Email)
	assert.Equal(t, "inspector", claims.Role)
	assert.True(t, claims.HasAccountantAccess)
	assert.True(t, claims.IsActive)
	assert.Equal(t, "field-backend", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := testManager("secret-a").GenerateToken(&models.User{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = testManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestTempTokenTypeIsEnforced(t *testing.T) {
	mgr := testManager("test-secret")
	user := &models.User{ID: 7, Email: "sara@example.com"}

	temp, err := mgr.GenerateTempToken(user)
	require.NoError(t, err)

	claims, err := mgr.ValidateTempToken(temp)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "sara@example.com", claims.Email)

	// A full session token must not pass the pending-2fa check.
	session, err := mgr.GenerateToken(user)
	require.NoError(t, err)
	_, err = mgr.ValidateTempToken(session)
	assert.ErrorIs(t, err, ErrNotTempToken)
}
