package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"field-backend/internal/cache"
	"field-backend/internal/filters"
	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

// PaymentStore abstracts the payment table for testing.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByName(ctx context.Context, name string) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	DeleteDraft(ctx context.Context, name string) error
	Submit(ctx context.Context, name string) error
}

// ReceiptStore abstracts the receipt table for testing.
type ReceiptStore interface {
	Create(ctx context.Context, r *models.Receipt) error
	GetByName(ctx context.Context, name string) (*models.Receipt, error)
	List(ctx context.Context) ([]*models.Receipt, error)
	DeleteDraft(ctx context.Context, name string) error
	Submit(ctx context.Context, name string) error
}

// AccountService owns payments and receipts. The two flows are mirror
// images: an outgoing payment names who was paid, an incoming receipt
// names who paid us. Everything else is shared.
type AccountService struct {
	Payments PaymentStore
	Receipts ReceiptStore
	notifier Notifier
}

func NewAccountService(payments PaymentStore, receipts ReceiptStore) *AccountService {
	return &AccountService{Payments: payments, Receipts: receipts}
}

func (s *AccountService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *AccountService) broadcast(entity, name string) {
	if s.notifier != nil {
		s.notifier.BroadcastChange(entity, name, "")
	}
}

func validateAccountEntry(date string, amount float64, counterparty, mode string) (timeDate string, err error) {
	if strings.TrimSpace(counterparty) == "" {
		return "", fmt.Errorf("counterparty is required")
	}
	if amount <= 0 {
		return "", fmt.Errorf("amount must be greater than zero")
	}
	if strings.TrimSpace(mode) == "" {
		return "", fmt.Errorf("mode of payment is required")
	}
	if _, err := timeutil.ParseInGST(timeutil.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return date, nil
}

func (s *AccountService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest, createdBy string) (*models.Payment, error) {
	if _, err := validateAccountEntry(req.Date, req.AmountAED, req.PaidTo, req.CustomModeOfPayment); err != nil {
		return nil, err
	}
	date, _ := timeutil.ParseInGST(timeutil.DateLayout, req.Date)

	p := &models.Payment{
		Date:                   date,
		AmountAED:              req.AmountAED,
		BillNumber:             req.BillNumber,
		PaidTo:                 req.PaidTo,
		CustomPurposeOfPayment: req.CustomPurposeOfPayment,
		CustomModeOfPayment:    req.CustomModeOfPayment,
		BankName:               req.BankName,
		CardNumber:             req.CardNumber,
		CustomAttachments:      req.CustomAttachments,
		CreatedBy:              createdBy,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	cache.InvalidateDashboardStats(ctx)
	s.broadcast("payment", p.Name)
	return s.Payments.GetByName(ctx, p.Name)
}

func (s *AccountService) CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest, createdBy string) (*models.Receipt, error) {
	if _, err := validateAccountEntry(req.Date, req.AmountAED, req.PaidFrom, req.CustomModeOfPayment); err != nil {
		return nil, err
	}
	date, _ := timeutil.ParseInGST(timeutil.DateLayout, req.Date)

	r := &models.Receipt{
		Date:                   date,
		AmountAED:              req.AmountAED,
		BillNumber:             req.BillNumber,
		PaidFrom:               req.PaidFrom,
		CustomPurposeOfPayment: req.CustomPurposeOfPayment,
		CustomModeOfPayment:    req.CustomModeOfPayment,
		BankName:               req.BankName,
		CardNumber:             req.CardNumber,
		CustomAttachments:      req.CustomAttachments,
		CreatedBy:              createdBy,
	}
	if err := s.Receipts.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}
	cache.InvalidateDashboardStats(ctx)
	s.broadcast("receipt", r.Name)
	return s.Receipts.GetByName(ctx, r.Name)
}

// ListPayments applies the mode, search and date filters in memory after
// a single table scan. Search text suppresses the date window.
func (s *AccountService) ListPayments(ctx context.Context, f filters.AccountFilter) ([]*models.Payment, error) {
	list, err := s.Payments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return filters.Payments(list, f), nil
}

func (s *AccountService) ListReceipts(ctx context.Context, f filters.AccountFilter) ([]*models.Receipt, error) {
	list, err := s.Receipts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return filters.Receipts(list, f), nil
}

func (s *AccountService) GetPayment(ctx context.Context, name string) (*models.Payment, error) {
	return s.Payments.GetByName(ctx, name)
}

func (s *AccountService) GetReceipt(ctx context.Context, name string) (*models.Receipt, error) {
	return s.Receipts.GetByName(ctx, name)
}

// DeletePayment removes a draft. Submitted records are immutable; the
// store refuses the delete and we surface that as an error.
func (s *AccountService) DeletePayment(ctx context.Context, name string) error {
	if err := s.Payments.DeleteDraft(ctx, name); err != nil {
		return err
	}
	cache.InvalidateDashboardStats(ctx)
	s.broadcast("payment", name)
	return nil
}

func (s *AccountService) DeleteReceipt(ctx context.Context, name string) error {
	if err := s.Receipts.DeleteDraft(ctx, name); err != nil {
		return err
	}
	cache.InvalidateDashboardStats(ctx)
	s.broadcast("receipt", name)
	return nil
}

// SubmitPayment moves a draft to docstatus 1, locking it permanently.
func (s *AccountService) SubmitPayment(ctx context.Context, name string) (*models.Payment, error) {
	if err := s.Payments.Submit(ctx, name); err != nil {
		return nil, err
	}
	s.broadcast("payment", name)
	return s.Payments.GetByName(ctx, name)
}

func (s *AccountService) SubmitReceipt(ctx context.Context, name string) (*models.Receipt, error) {
	if err := s.Receipts.Submit(ctx, name); err != nil {
		return nil, err
	}
	s.broadcast("receipt", name)
	return s.Receipts.GetByName(ctx, name)
}

// DashboardStats is the accountant landing-page summary for today.
type DashboardStats struct {
	Date          string  `json:"date"`
	PaymentCount  int     `json:"payment_count"`
	PaymentTotal  float64 `json:"payment_total"`
	ReceiptCount  int     `json:"receipt_count"`
	ReceiptTotal  float64 `json:"receipt_total"`
	NetAED        float64 `json:"net_aed"`
	DraftPayments int     `json:"draft_payments"`
	DraftReceipts int     `json:"draft_receipts"`
}

// GetDashboardStats aggregates today's entries, served from redis when
// the snapshot is fresh. Write paths invalidate the snapshot.
func (s *AccountService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if data, ok := cache.GetCachedDashboardStats(ctx); ok {
		var stats DashboardStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
		log.Printf("[Dashboard] discarding unreadable cached snapshot")
	}

	today := filters.TodayRange()
	payments, err := s.Payments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	receipts, err := s.Receipts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	stats := &DashboardStats{Date: timeutil.Now().Format(timeutil.DateLayout)}
	for _, p := range payments {
		if p.DocStatus == 0 {
			stats.DraftPayments++
		}
		if today.Contains(p.Date) {
			stats.PaymentCount++
			stats.PaymentTotal += p.AmountAED
		}
	}
	for _, r := range receipts {
		if r.DocStatus == 0 {
			stats.DraftReceipts++
		}
		if today.Contains(r.Date) {
			stats.ReceiptCount++
			stats.ReceiptTotal += r.AmountAED
		}
	}
	stats.NetAED = stats.ReceiptTotal - stats.PaymentTotal

	if data, err := json.Marshal(stats); err == nil {
		cache.CacheDashboardStats(ctx, data)
	}
	return stats, nil
}
