package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

// ReportService renders inspection reports and accounts day-books as
// downloadable PDFs.
type ReportService struct {
	Leads       LeadStore
	Inspections InspectionStore
	Accounts    *AccountService
}

func NewReportService(leads LeadStore, inspections InspectionStore, accounts *AccountService) *ReportService {
	return &ReportService{Leads: leads, Inspections: inspections, Accounts: accounts}
}

// GenerateInspectionPDF renders a single inspection record, with its
// measured areas and captured images listed, for handoff to the client.
func (s *ReportService) GenerateInspectionPDF(ctx context.Context, name string) ([]byte, error) {
	inspection, err := s.Inspections.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	var lead *models.Lead
	if inspection.Lead != "" {
		lead, _ = s.Leads.GetByName(ctx, inspection.Lead)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Site Inspection Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.FormatGST(timeutil.Now(), timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Inspection Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Inspection Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Reference: %s", inspection.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", inspection.InspectionStatus), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.FormatGST(inspection.InspectionDate, "02-Jan-2006")), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Property Type: %s", inspection.PropertyType), "RB", 1, "L", false, 0, "")
	if lead != nil {
		pdf.CellFormat(95, 7, fmt.Sprintf("Client: %s", lead.LeadName), "LB", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, fmt.Sprintf("Inquiry: %s", lead.Name), "RB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Measured areas
	if len(inspection.SiteDimensions) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Measured Areas", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(80, 7, "Area", "1", 0, "C", true, 0, "")
		pdf.CellFormat(110, 7, "Dimensions", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, row := range inspection.SiteDimensions {
			area := row.AreaName
			if len(area) > 40 {
				area = area[:37] + "..."
			}
			pdf.CellFormat(80, 6, area, "1", 0, "L", false, 0, "")
			pdf.CellFormat(110, 6, row.DimensionsUnits, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Captured images are referenced by URL; the PDF lists remarks only.
	if len(inspection.CustomSiteImages) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, fmt.Sprintf("Site Photos (%d captured)", len(inspection.CustomSiteImages)), "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for i, img := range inspection.CustomSiteImages {
			remarks := img.Remarks
			if remarks == "" {
				remarks = "-"
			}
			pdf.CellFormat(190, 6, fmt.Sprintf("%d. %s", i+1, remarks), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	if inspection.InspectionNotes != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Notes", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, inspection.InspectionNotes, "1", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateDayBookPDF renders today's payments and receipts side by side,
// landscape for the wider tables.
func (s *ReportService) GenerateDayBookPDF(ctx context.Context) ([]byte, error) {
	stats, err := s.Accounts.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.Accounts.Payments.List(ctx)
	if err != nil {
		return nil, err
	}
	receipts, err := s.Accounts.Receipts.List(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, fmt.Sprintf("Accounts Day Book - %s", stats.Date), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	writeTable := func(title string, rows [][4]string, total float64) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(277, 8, title, "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(45, 7, "Reference", "1", 0, "C", true, 0, "")
		pdf.CellFormat(97, 7, "Counterparty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Mode", "1", 0, "C", true, 0, "")
		pdf.CellFormat(75, 7, "Amount (AED)", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, row := range rows {
			pdf.CellFormat(45, 6, row[0], "1", 0, "C", false, 0, "")
			pdf.CellFormat(97, 6, row[1], "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 6, row[2], "1", 0, "L", false, 0, "")
			pdf.CellFormat(75, 6, row[3], "1", 1, "R", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(202, 7, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(75, 7, fmt.Sprintf("%.2f", total), "1", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	var payRows [][4]string
	for _, p := range payments {
		if !timeutil.SameDate(p.Date, timeutil.Now()) {
			continue
		}
		payRows = append(payRows, [4]string{p.Name, p.PaidTo, p.CustomModeOfPayment, fmt.Sprintf("%.2f", p.AmountAED)})
	}
	writeTable("Payments (outgoing)", payRows, stats.PaymentTotal)

	var recRows [][4]string
	for _, r := range receipts {
		if !timeutil.SameDate(r.Date, timeutil.Now()) {
			continue
		}
		recRows = append(recRows, [4]string{r.Name, r.PaidFrom, r.CustomModeOfPayment, fmt.Sprintf("%.2f", r.AmountAED)})
	}
	writeTable("Receipts (incoming)", recRows, stats.ReceiptTotal)

	if stats.NetAED >= 0 {
		pdf.SetFillColor(200, 255, 200)
	} else {
		pdf.SetFillColor(255, 200, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(277, 10, fmt.Sprintf("Net for the day: AED %.2f", stats.NetAED), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
