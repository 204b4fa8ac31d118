package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notification(p *domain.Payment, status domain.PaymentStatus) provider.Notification {
	return provider.Notification{
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderID,
		NativeStatus:      string(status),
		Status:            status,
	}
}

func TestWebhook_UnknownPaymentIsAcknowledged(t *testing.T) {
	h := newHarness(t)

	applied, err := h.webhooks.Reconcile(context.Background(), provider.Notification{
		Provider:          "mock",
		ProviderPaymentID: "tr_nobody",
		Status:            domain.StatusSucceeded,
	})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestWebhook_SucceededCascadesOnceAcrossRedelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	inv := h.createInvoice(t, domain.InvoiceOpen)

	p, err := h.payments.CreatePayment(ctx, services.CreatePaymentCommand{
		Provider: "mock", Amount: 5000, Currency: "EUR", InvoiceID: &inv.ID,
	})
	require.NoError(t, err)

	applied, err := h.webhooks.Reconcile(ctx, notification(p, domain.StatusSucceeded))
	require.NoError(t, err)
	require.True(t, applied)

	paidInvoice, err := h.store.Invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, paidInvoice.Status)
	require.NotNil(t, paidInvoice.PaymentID)
	assert.Equal(t, p.ID, *paidInvoice.PaymentID)
	require.NotNil(t, paidInvoice.PaidAt)
	paidAt := *paidInvoice.PaidAt

	// Re-delivery of the same event is a harmless re-apply.
	applied, err = h.webhooks.Reconcile(ctx, notification(p, domain.StatusSucceeded))
	require.NoError(t, err)
	assert.True(t, applied)

	stored, err := h.store.Payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Version)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)

	again, err := h.store.Invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, paidInvoice.Version, again.Version)
	assert.Equal(t, paidAt, *again.PaidAt)
	assert.Equal(t, int64(1), h.invoices.updates.Load())
}

func TestWebhook_OutOfOrderEventsCannotRegress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	applied, err := h.webhooks.Reconcile(ctx, notification(p, domain.StatusSucceeded))
	require.NoError(t, err)
	require.True(t, applied)

	// A late "processing" arrives after success.
	applied, err = h.webhooks.Reconcile(ctx, notification(p, domain.StatusProcessing))
	require.Error(t, err)
	assert.False(t, applied)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := h.store.Payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestWebhook_HandleWebhook(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	newRequest := func() *http.Request {
		return httptest.NewRequest(http.MethodPost, "/billing/webhooks/mock", strings.NewReader("id="+p.ProviderID))
	}

	t.Run("verification failure leaves the payment untouched", func(t *testing.T) {
		h.provider.ParseWebhookFn = func(ctx context.Context, r *http.Request) (*provider.Notification, error) {
			return nil, errors.New("bad signature")
		}
		h.webhooks.HandleWebhook(ctx, "mock", newRequest())

		stored, err := h.store.Payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("ignored event leaves the payment untouched", func(t *testing.T) {
		h.provider.ParseWebhookFn = func(ctx context.Context, r *http.Request) (*provider.Notification, error) {
			return nil, nil
		}
		h.webhooks.HandleWebhook(ctx, "mock", newRequest())

		stored, err := h.store.Payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("unknown provider and provider without webhooks are ignored", func(t *testing.T) {
		h.webhooks.HandleWebhook(ctx, "nope", newRequest())
		h.webhooks.HandleWebhook(ctx, "bare", newRequest())
	})

	t.Run("verified event is applied", func(t *testing.T) {
		h.provider.ParseWebhookFn = func(ctx context.Context, r *http.Request) (*provider.Notification, error) {
			require.NoError(t, r.ParseForm())
			n := notification(p, domain.StatusFailed)
			n.ProviderPaymentID = r.PostForm.Get("id")
			return &n, nil
		}
		req := newRequest()
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		h.webhooks.HandleWebhook(ctx, "mock", req)

		stored, err := h.store.Payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, stored.Status)
		assert.Equal(t, 2, stored.Version)
	})
}
