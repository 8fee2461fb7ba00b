package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"field-backend/internal/models"
)

type InspectionRepository struct {
	DB *pgxpool.Pool
}

func NewInspectionRepository(db *pgxpool.Pool) *InspectionRepository {
	return &InspectionRepository{DB: db}
}

// listFields are the columns list queries may filter on. Field names come
// in from the API, so anything outside this set is rejected before it
// reaches SQL.
var listFields = map[string]string{
	"owner":             "owner",
	"lead":              "lead",
	"inspection_status": "inspection_status",
	"property_type":     "property_type",
}

const inspectionColumns = `name, lead, inspection_status, inspection_date, COALESCE(inspection_time, ''),
	COALESCE(property_type, ''), site_dimensions, custom_site_images, COALESCE(measurement_sketch, ''),
	COALESCE(inspection_notes, ''), docstatus, owner, created_at, updated_at`

func scanInspection(row interface{ Scan(...any) error }) (*models.SiteInspection, error) {
	i := &models.SiteInspection{}
	var dims, images []byte
	err := row.Scan(
		&i.Name,
		&i.Lead,
		&i.InspectionStatus,
		&i.InspectionDate,
		&i.InspectionTime,
		&i.PropertyType,
		&dims,
		&images,
		&i.MeasurementSketch,
		&i.InspectionNotes,
		&i.DocStatus,
		&i.Owner,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dims, &i.SiteDimensions); err != nil {
		return nil, fmt.Errorf("bad site_dimensions for %s: %w", i.Name, err)
	}
	if err := json.Unmarshal(images, &i.CustomSiteImages); err != nil {
		return nil, fmt.Errorf("bad custom_site_images for %s: %w", i.Name, err)
	}
	return i, nil
}

func (r *InspectionRepository) nextName(ctx context.Context) (string, error) {
	var n int
	if err := r.DB.QueryRow(ctx, "SELECT nextval('inspection_number_sequence')").Scan(&n); err != nil {
		return "", fmt.Errorf("failed to get next inspection number: %w", err)
	}
	return fmt.Sprintf("SI-%06d", n), nil
}

func (r *InspectionRepository) Create(ctx context.Context, i *models.SiteInspection) error {
	name, err := r.nextName(ctx)
	if err != nil {
		return err
	}

	dims, err := json.Marshal(i.SiteDimensions)
	if err != nil {
		return fmt.Errorf("failed to encode site_dimensions: %w", err)
	}
	images, err := json.Marshal(i.CustomSiteImages)
	if err != nil {
		return fmt.Errorf("failed to encode custom_site_images: %w", err)
	}

	query := `
		INSERT INTO site_inspections
			(name, lead, inspection_status, inspection_date, inspection_time, property_type,
			 site_dimensions, custom_site_images, measurement_sketch, inspection_notes, docstatus, owner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		name,
		i.Lead,
		i.InspectionStatus,
		i.InspectionDate,
		i.InspectionTime,
		i.PropertyType,
		dims,
		images,
		i.MeasurementSketch,
		i.InspectionNotes,
		i.DocStatus,
		i.Owner,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}

	i.Name = name
	return nil
}

func (r *InspectionRepository) GetByName(ctx context.Context, name string) (*models.SiteInspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM site_inspections WHERE name = $1`
	return scanInspection(r.DB.QueryRow(ctx, query, name))
}

// ListByField returns inspections matching one field equality predicate,
// newest first. The field must be in the whitelist.
func (r *InspectionRepository) ListByField(ctx context.Context, field, value string) ([]*models.SiteInspection, error) {
	column, ok := listFields[field]
	if !ok {
		return nil, fmt.Errorf("unsupported filter field %q", field)
	}

	query := `SELECT ` + inspectionColumns + ` FROM site_inspections WHERE ` + column +
		` = $1 ORDER BY inspection_date DESC, name DESC`

	rows, err := r.DB.Query(ctx, query, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []*models.SiteInspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, i)
	}
	return inspections, rows.Err()
}

// Update applies a partial patch. Only non-zero fields are written;
// the caller has already validated any status transition.
func (r *InspectionRepository) Update(ctx context.Context, name string, patch *models.InspectionPatch) error {
	set := []string{"updated_at = NOW()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Lead != "" {
		set = append(set, "lead = "+arg(patch.Lead))
	}
	if patch.InspectionStatus != "" {
		set = append(set, "inspection_status = "+arg(patch.InspectionStatus))
	}
	if patch.InspectionDate != "" {
		set = append(set, "inspection_date = "+arg(patch.InspectionDate))
	}
	if patch.InspectionTime != "" {
		set = append(set, "inspection_time = "+arg(patch.InspectionTime))
	}
	if patch.PropertyType != "" {
		set = append(set, "property_type = "+arg(patch.PropertyType))
	}
	if patch.SiteDimensions != nil {
		dims, err := json.Marshal(patch.SiteDimensions)
		if err != nil {
			return fmt.Errorf("failed to encode site_dimensions: %w", err)
		}
		set = append(set, "site_dimensions = "+arg(dims))
	}
	if patch.CustomSiteImages != nil {
		images, err := json.Marshal(patch.CustomSiteImages)
		if err != nil {
			return fmt.Errorf("failed to encode custom_site_images: %w", err)
		}
		set = append(set, "custom_site_images = "+arg(images))
	}
	if patch.MeasurementSketch != "" {
		set = append(set, "measurement_sketch = "+arg(patch.MeasurementSketch))
	}
	if patch.InspectionNotes != "" {
		set = append(set, "inspection_notes = "+arg(patch.InspectionNotes))
	}
	if patch.DocStatus != nil {
		set = append(set, "docstatus = "+arg(*patch.DocStatus))
	}

	query := "UPDATE site_inspections SET "
	for idx, s := range set {
		if idx > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE name = " + arg(name)

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update inspection %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inspection %s not found", name)
	}
	return nil
}
