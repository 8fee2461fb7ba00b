package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"field-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `name, date, amountaed, COALESCE(bill_number, ''), paid_to,
	COALESCE(custom_purpose_of_payment, ''), COALESCE(custom_mode_of_payment, ''),
	COALESCE(bank_name, ''), COALESCE(card_number, ''), custom_attachments, docstatus,
	COALESCE(created_by, ''), created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var attachments []byte
	err := row.Scan(
		&p.Name,
		&p.Date,
		&p.AmountAED,
		&p.BillNumber,
		&p.PaidTo,
		&p.CustomPurposeOfPayment,
		&p.CustomModeOfPayment,
		&p.BankName,
		&p.CardNumber,
		&attachments,
		&p.DocStatus,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachments, &p.CustomAttachments); err != nil {
		return nil, fmt.Errorf("bad custom_attachments for %s: %w", p.Name, err)
	}
	return p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('payment_number_sequence')").Scan(&n); err != nil {
		return fmt.Errorf("failed to get next payment number: %w", err)
	}
	name := fmt.Sprintf("PAY-%06d", n)

	attachments, err := json.Marshal(p.CustomAttachments)
	if err != nil {
		return fmt.Errorf("failed to encode custom_attachments: %w", err)
	}

	query := `
		INSERT INTO payments
			(name, date, amountaed, bill_number, paid_to, custom_purpose_of_payment,
			 custom_mode_of_payment, bank_name, card_number, custom_attachments, docstatus, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		name,
		p.Date,
		p.AmountAED,
		p.BillNumber,
		p.PaidTo,
		p.CustomPurposeOfPayment,
		p.CustomModeOfPayment,
		p.BankName,
		p.CardNumber,
		attachments,
		p.DocStatus,
		p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.Name = name
	return nil
}

func (r *PaymentRepository) GetByName(ctx context.Context, name string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE name = $1`
	return scanPayment(r.DB.QueryRow(ctx, query, name))
}

func (r *PaymentRepository) List(ctx context.Context) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY date DESC, name DESC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// DeleteDraft removes a payment only while it is still a draft.
// Submitted records are immutable.
func (r *PaymentRepository) DeleteDraft(ctx context.Context, name string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM payments WHERE name = $1 AND docstatus = 0`, name)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found or already submitted", name)
	}
	return nil
}

// Submit locks a draft payment against further changes.
func (r *PaymentRepository) Submit(ctx context.Context, name string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE payments SET docstatus = 1, updated_at = NOW() WHERE name = $1 AND docstatus = 0`, name)
	if err != nil {
		return fmt.Errorf("failed to submit payment %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found or already submitted", name)
	}
	return nil
}
