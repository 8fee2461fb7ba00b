package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TOTPRepository struct {
	DB *pgxpool.Pool
}

func NewTOTPRepository(db *pgxpool.Pool) *TOTPRepository {
	return &TOTPRepository{DB: db}
}

// SaveSecret stores a new secret, replacing any unverified one.
func (r *TOTPRepository) SaveSecret(ctx context.Context, userID int, secret string) error {
	query := `
		INSERT INTO user_totp (user_id, secret, verified)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (user_id) DO UPDATE SET secret = $2, verified = FALSE, created_at = NOW()
	`
	_, err := r.DB.Exec(ctx, query, userID, secret)
	return err
}

func (r *TOTPRepository) GetSecret(ctx context.Context, userID int) (secret string, verified bool, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT secret, verified FROM user_totp WHERE user_id = $1`, userID).
		Scan(&secret, &verified)
	return secret, verified, err
}

func (r *TOTPRepository) MarkVerified(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE user_totp SET verified = TRUE WHERE user_id = $1`, userID)
	return err
}

func (r *TOTPRepository) Delete(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM user_totp WHERE user_id = $1`, userID)
	return err
}
