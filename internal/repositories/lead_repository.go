package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"field-backend/internal/models"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `name, lead_name, status, COALESCE(email_id, ''), COALESCE(mobile_no, ''),
	COALESCE(source, ''), COALESCE(property_type, ''), COALESCE(address, ''), COALESCE(notes, ''),
	created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*models.Lead, error) {
	lead := &models.Lead{}
	err := row.Scan(
		&lead.Name,
		&lead.LeadName,
		&lead.Status,
		&lead.EmailID,
		&lead.MobileNo,
		&lead.Source,
		&lead.PropertyType,
		&lead.Address,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) GetByName(ctx context.Context, name string) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE name = $1`
	return scanLead(r.DB.QueryRow(ctx, query, name))
}

func (r *LeadRepository) List(ctx context.Context) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// UpdateStatus moves a lead to a new pipeline status. Used by the
// inspection cascade rules; the rest of the lead record belongs to the
// sales workflow.
func (r *LeadRepository) UpdateStatus(ctx context.Context, name, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE name = $2`,
		status, name)
	if err != nil {
		return fmt.Errorf("failed to update lead %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %s not found", name)
	}
	return nil
}
