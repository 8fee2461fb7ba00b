package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"field-backend/internal/models"
)

type ReceiptRepository struct {
	DB *pgxpool.Pool
}

func NewReceiptRepository(db *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{DB: db}
}

const receiptColumns = `name, date, amountaed, COALESCE(bill_number, ''), paid_from,
	COALESCE(custom_purpose_of_payment, ''), COALESCE(custom_mode_of_payment, ''),
	COALESCE(bank_name, ''), COALESCE(card_number, ''), custom_attachments, docstatus,
	COALESCE(created_by, ''), created_at, updated_at`

func scanReceipt(row interface{ Scan(...any) error }) (*models.Receipt, error) {
	rec := &models.Receipt{}
	var attachments []byte
	err := row.Scan(
		&rec.Name,
		&rec.Date,
		&rec.AmountAED,
		&rec.BillNumber,
		&rec.PaidFrom,
		&rec.CustomPurposeOfPayment,
		&rec.CustomModeOfPayment,
		&rec.BankName,
		&rec.CardNumber,
		&attachments,
		&rec.DocStatus,
		&rec.CreatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachments, &rec.CustomAttachments); err != nil {
		return nil, fmt.Errorf("bad custom_attachments for %s: %w", rec.Name, err)
	}
	return rec, nil
}

func (r *ReceiptRepository) Create(ctx context.Context, rec *models.Receipt) error {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('receipt_number_sequence')").Scan(&n); err != nil {
		return fmt.Errorf("failed to get next receipt number: %w", err)
	}
	name := fmt.Sprintf("RCV-%06d", n)

	attachments, err := json.Marshal(rec.CustomAttachments)
	if err != nil {
		return fmt.Errorf("failed to encode custom_attachments: %w", err)
	}

	query := `
		INSERT INTO receipts
			(name, date, amountaed, bill_number, paid_from, custom_purpose_of_payment,
			 custom_mode_of_payment, bank_name, card_number, custom_attachments, docstatus, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		name,
		rec.Date,
		rec.AmountAED,
		rec.BillNumber,
		rec.PaidFrom,
		rec.CustomPurposeOfPayment,
		rec.CustomModeOfPayment,
		rec.BankName,
		rec.CardNumber,
		attachments,
		rec.DocStatus,
		rec.CreatedBy,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	rec.Name = name
	return nil
}

func (r *ReceiptRepository) GetByName(ctx context.Context, name string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE name = $1`
	return scanReceipt(r.DB.QueryRow(ctx, query, name))
}

func (r *ReceiptRepository) List(ctx context.Context) ([]*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts ORDER BY date DESC, name DESC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

// DeleteDraft removes a receipt only while it is still a draft.
func (r *ReceiptRepository) DeleteDraft(ctx context.Context, name string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM receipts WHERE name = $1 AND docstatus = 0`, name)
	if err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s not found or already submitted", name)
	}
	return nil
}

// Submit locks a draft receipt against further changes.
func (r *ReceiptRepository) Submit(ctx context.Context, name string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE receipts SET docstatus = 1, updated_at = NOW() WHERE name = $1 AND docstatus = 0`, name)
	if err != nil {
		return fmt.Errorf("failed to submit receipt %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s not found or already submitted", name)
	}
	return nil
}
