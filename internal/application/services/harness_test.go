package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store    application.Store
	invoices *CountingInvoiceRepository
	registry *provider.Registry
	provider *MockProvider

	updater  *services.StatusUpdater
	cascade  *services.InvoiceCascade
	payments *services.PaymentService
	refunds  *services.RefundService
	invoice  *services.InvoiceService
	webhooks *services.WebhookService
	query    *services.QueryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := discardLogger()

	store := memory.NewStore()
	counting := &CountingInvoiceRepository{InvoiceRepository: store.Invoices}
	store.Invoices = counting

	registry := provider.NewRegistry(logger)
	mock := NewMockProvider("mock")
	registry.Register(mock)
	registry.Register(initOnlyProvider{key: "bare"})

	updater := services.NewStatusUpdater(store.Payments, logger)
	cascade := services.NewInvoiceCascade(store.Invoices, store.Payments, updater, logger)

	return &harness{
		store:    store,
		invoices: counting,
		registry: registry,
		provider: mock,
		updater:  updater,
		cascade:  cascade,
		payments: services.NewPaymentService(registry, store, updater, cascade, logger),
		refunds:  services.NewRefundService(registry, store, updater, logger),
		invoice:  services.NewInvoiceService(store, updater, cascade, logger),
		webhooks: services.NewWebhookService(registry, store.Payments, updater, cascade, logger),
		query:    services.NewQueryService(store),
	}
}

func (h *harness) createPayment(t *testing.T, amount int64) *domain.Payment {
	t.Helper()
	p, err := h.payments.CreatePayment(context.Background(), services.CreatePaymentCommand{
		Provider:    "mock",
		Amount:      amount,
		Currency:    "EUR",
		Description: "Order #1",
	})
	require.NoError(t, err)
	return p
}

func (h *harness) createInvoice(t *testing.T, status domain.InvoiceStatus) *domain.Invoice {
	t.Helper()
	inv, err := h.invoice.CreateInvoice(context.Background(), services.CreateInvoiceCommand{
		Status:   status,
		Currency: "EUR",
		Items:    []domain.LineItem{{Description: "Subscription", Quantity: 1, UnitAmount: 5000}},
		Number:   "INV-" + time.Now().Format("150405.000000000"),
	})
	require.NoError(t, err)
	return inv
}

// succeed drives a payment to succeeded the way a provider webhook would.
func (h *harness) succeed(t *testing.T, p *domain.Payment) *domain.Payment {
	t.Helper()
	applied, err := h.webhooks.Reconcile(context.Background(), provider.Notification{
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderID,
		NativeStatus:      "paid",
		Status:            domain.StatusSucceeded,
	})
	require.NoError(t, err)
	require.True(t, applied)

	stored, err := h.store.Payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return stored
}
