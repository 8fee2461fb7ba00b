package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-backend/internal/filters"
	"field-backend/internal/models"
	"field-backend/internal/timeutil"
)

type fakePaymentStore struct {
	records map[string]*models.Payment
	seq     int
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{records: map[string]*models.Payment{}}
}

func (s *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	s.seq++
	p.Name = fmt.Sprintf("PAY-%06d", s.seq)
	s.records[p.Name] = p
	return nil
}

func (s *fakePaymentStore) GetByName(_ context.Context, name string) (*models.Payment, error) {
	p, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", name)
	}
	return p, nil
}

func (s *fakePaymentStore) List(_ context.Context) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.records {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakePaymentStore) DeleteDraft(_ context.Context, name string) error {
	p, ok := s.records[name]
	if !ok || p.DocStatus != 0 {
		return fmt.Errorf("draft payment %s not found", name)
	}
	delete(s.records, name)
	return nil
}

func (s *fakePaymentStore) Submit(_ context.Context, name string) error {
	p, ok := s.records[name]
	if !ok || p.DocStatus != 0 {
		return fmt.Errorf("draft payment %s not found", name)
	}
	p.DocStatus = 1
	return nil
}

type fakeReceiptStore struct {
	records map[string]*models.Receipt
	seq     int
}

func newFakeReceiptStore() *fakeReceiptStore {
	return &fakeReceiptStore{records: map[string]*models.Receipt{}}
}

func (s *fakeReceiptStore) Create(_ context.Context, r *models.Receipt) error {
	s.seq++
	r.Name = fmt.Sprintf("RCV-%06d", s.seq)
	s.records[r.Name] = r
	return nil
}

func (s *fakeReceiptStore) GetByName(_ context.Context, name string) (*models.Receipt, error) {
	r, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("receipt %s not found", name)
	}
	return r, nil
}

func (s *fakeReceiptStore) List(_ context.Context) ([]*models.Receipt, error) {
	var out []*models.Receipt
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeReceiptStore) DeleteDraft(_ context.Context, name string) error {
	r, ok := s.records[name]
	if !ok || r.DocStatus != 0 {
		return fmt.Errorf("draft receipt %s not found", name)
	}
	delete(s.records, name)
	return nil
}

func (s *fakeReceiptStore) Submit(_ context.Context, name string) error {
	r, ok := s.records[name]
	if !ok || r.DocStatus != 0 {
		return fmt.Errorf("draft receipt %s not found", name)
	}
	r.DocStatus = 1
	return nil
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()
	dateStr := timeutil.Now().Format(timeutil.DateLayout)
	svc := NewAccountService(newFakePaymentStore(), newFakeReceiptStore())

	t.Run("valid entry gets a document number", func(t *testing.T) {
		got, err := svc.CreatePayment(ctx, &models.CreatePaymentRequest{
			Date: dateStr, AmountAED: 250.50, PaidTo: "Gulf Hardware", CustomModeOfPayment: "Cash",
		}, "accounts@example.com")
		require.NoError(t, err)
		assert.Equal(t, "PAY-000001", got.Name)
		assert.Equal(t, 0, got.DocStatus)
		assert.Equal(t, "accounts@example.com", got.CreatedBy)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, &models.CreatePaymentRequest{
			Date: dateStr, PaidTo: "Gulf Hardware", CustomModeOfPayment: "Cash",
		}, "x")
		assert.Error(t, err)
	})

	t.Run("rejects missing counterparty", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, &models.CreatePaymentRequest{
			Date: dateStr, AmountAED: 10, CustomModeOfPayment: "Cash",
		}, "x")
		assert.Error(t, err)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, &models.CreatePaymentRequest{
			Date: "01/09/2026", AmountAED: 10, PaidTo: "Gulf Hardware", CustomModeOfPayment: "Cash",
		}, "x")
		assert.Error(t, err)
	})
}

func TestSubmitAndDeleteLifecycle(t *testing.T) {
	ctx := context.Background()
	dateStr := timeutil.Now().Format(timeutil.DateLayout)
	svc := NewAccountService(newFakePaymentStore(), newFakeReceiptStore())

	created, err := svc.CreateReceipt(ctx, &models.CreateReceiptRequest{
		Date: dateStr, AmountAED: 1200, PaidFrom: "Marina Villas LLC", CustomModeOfPayment: "Bank Transfer",
	}, "accounts@example.com")
	require.NoError(t, err)

	submitted, err := svc.SubmitReceipt(ctx, created.Name)
	require.NoError(t, err)
	assert.Equal(t, 1, submitted.DocStatus)

	// Submitted records refuse both re-submit and delete.
	_, err = svc.SubmitReceipt(ctx, created.Name)
	assert.Error(t, err)
	assert.Error(t, svc.DeleteReceipt(ctx, created.Name))

	still, err := svc.GetReceipt(ctx, created.Name)
	require.NoError(t, err)
	assert.Equal(t, 1, still.DocStatus)
}

func TestListPaymentsFiltered(t *testing.T) {
	ctx := context.Background()
	dateStr := timeutil.Now().Format(timeutil.DateLayout)
	svc := NewAccountService(newFakePaymentStore(), newFakeReceiptStore())

	seed := []models.CreatePaymentRequest{
		{Date: dateStr, AmountAED: 100, PaidTo: "Gulf Hardware", CustomModeOfPayment: "Cash"},
		{Date: dateStr, AmountAED: 200, PaidTo: "Al Noor Trading", CustomModeOfPayment: "Credit Card"},
	}
	for i := range seed {
		_, err := svc.CreatePayment(ctx, &seed[i], "x")
		require.NoError(t, err)
	}

	got, err := svc.ListPayments(ctx, filters.AccountFilter{Mode: filters.ModeCash, Range: filters.TodayRange()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gulf Hardware", got[0].PaidTo)
}

func TestGetDashboardStats(t *testing.T) {
	ctx := context.Background()
	dateStr := timeutil.Now().Format(timeutil.DateLayout)
	svc := NewAccountService(newFakePaymentStore(), newFakeReceiptStore())

	_, err := svc.CreatePayment(ctx, &models.CreatePaymentRequest{
		Date: dateStr, AmountAED: 300, PaidTo: "Gulf Hardware", CustomModeOfPayment: "Cash",
	}, "x")
	require.NoError(t, err)
	rec, err := svc.CreateReceipt(ctx, &models.CreateReceiptRequest{
		Date: dateStr, AmountAED: 1000, PaidFrom: "Marina Villas LLC", CustomModeOfPayment: "Cash",
	}, "x")
	require.NoError(t, err)
	_, err = svc.SubmitReceipt(ctx, rec.Name)
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PaymentCount)
	assert.Equal(t, 300.0, stats.PaymentTotal)
	assert.Equal(t, 1, stats.ReceiptCount)
	assert.Equal(t, 1000.0, stats.ReceiptTotal)
	assert.Equal(t, 700.0, stats.NetAED)
	assert.Equal(t, 1, stats.DraftPayments)
	assert.Equal(t, 0, stats.DraftReceipts)
}
