package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"field-backend/internal/models"
	"field-backend/internal/repositories"
)

const totpIssuer = "FieldOps"

var (
	ErrNoTOTPSecret    = errors.New("2FA setup has not been started")
	ErrInvalidTOTPCode = errors.New("invalid verification code")
)

// TOTPSetupResponse carries everything the authenticator-app enrollment
// screen needs, QR code included.
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

type TOTPService struct {
	users    *repositories.UserRepository
	totpRepo *repositories.TOTPRepository
}

func NewTOTPService(users *repositories.UserRepository, totpRepo *repositories.TOTPRepository) *TOTPService {
	return &TOTPService{users: users, totpRepo: totpRepo}
}

// GenerateSetup creates a fresh secret for the user and returns it with
// a QR code. The secret stays unverified until VerifyAndEnable succeeds,
// so an abandoned setup never locks anyone out.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.totpRepo.SaveSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      totpIssuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable checks the first code from the authenticator app and
// turns 2FA on for the account.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	secret, _, err := s.totpRepo.GetSecret(ctx, userID)
	if err != nil {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	if err := s.totpRepo.MarkVerified(ctx, userID); err != nil {
		return err
	}
	return s.users.SetTOTPEnabled(ctx, userID, true)
}

// VerifyCode checks a login-time code against the stored, verified secret.
func (s *TOTPService) VerifyCode(ctx context.Context, userID int, code string) error {
	secret, verified, err := s.totpRepo.GetSecret(ctx, userID)
	if err != nil || !verified {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	return nil
}

// Disable turns 2FA off and discards the secret.
func (s *TOTPService) Disable(ctx context.Context, userID int) error {
	if err := s.totpRepo.Delete(ctx, userID); err != nil {
		return err
	}
	return s.users.SetTOTPEnabled(ctx, userID, false)
}
