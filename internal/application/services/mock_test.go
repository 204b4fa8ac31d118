package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

// MockProvider implements every optional provider interface. Each method
// can be overridden through its Fn field.
type MockProvider struct {
	key     string
	counter atomic.Int64

	InitPaymentFn   func(ctx context.Context, payment *domain.Payment) error
	CancelPaymentFn func(ctx context.Context, payment *domain.Payment) (json.RawMessage, error)
	RefundPaymentFn func(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*provider.RefundResult, error)
	ParseWebhookFn  func(ctx context.Context, r *http.Request) (*provider.Notification, error)
}

func NewMockProvider(key string) *MockProvider {
	return &MockProvider{key: key}
}

func (m *MockProvider) Key() string { return m.key }

func (m *MockProvider) InitPayment(ctx context.Context, payment *domain.Payment) error {
	if m.InitPaymentFn != nil {
		return m.InitPaymentFn(ctx, payment)
	}
	if err := provider.ValidatePayment(payment); err != nil {
		return err
	}
	payment.ProviderID = fmt.Sprintf("%s_%d", m.key, m.counter.Add(1))
	return nil
}

func (m *MockProvider) CancelPayment(ctx context.Context, payment *domain.Payment) (json.RawMessage, error) {
	if m.CancelPaymentFn != nil {
		return m.CancelPaymentFn(ctx, payment)
	}
	return json.RawMessage(`{"status":"canceled"}`), nil
}

func (m *MockProvider) RefundPayment(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*provider.RefundResult, error) {
	if m.RefundPaymentFn != nil {
		return m.RefundPaymentFn(ctx, payment, refund)
	}
	return &provider.RefundResult{
		ProviderID: fmt.Sprintf("re_%d", m.counter.Add(1)),
		Status:     domain.RefundSucceeded,
	}, nil
}

func (m *MockProvider) ParseWebhook(ctx context.Context, r *http.Request) (*provider.Notification, error) {
	if m.ParseWebhookFn != nil {
		return m.ParseWebhookFn(ctx, r)
	}
	return nil, nil
}

// initOnlyProvider supports nothing beyond payment creation.
type initOnlyProvider struct{ key string }

func (p initOnlyProvider) Key() string { return p.key }

func (p initOnlyProvider) InitPayment(ctx context.Context, payment *domain.Payment) error {
	payment.ProviderID = p.key + "_only"
	return nil
}

// CountingInvoiceRepository counts successful invoice writes.
type CountingInvoiceRepository struct {
	application.InvoiceRepository
	updates atomic.Int64
}

func (r *CountingInvoiceRepository) UpdateIfVersion(ctx context.Context, inv *domain.Invoice, expected int) error {
	err := r.InvoiceRepository.UpdateIfVersion(ctx, inv, expected)
	if err == nil {
		r.updates.Add(1)
	}
	return err
}

// ConflictingPaymentRepository loses every conditional write.
type ConflictingPaymentRepository struct {
	application.PaymentRepository
}

func (r *ConflictingPaymentRepository) UpdateIfVersion(ctx context.Context, p *domain.Payment, expected int) error {
	return application.ErrVersionConflict
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
