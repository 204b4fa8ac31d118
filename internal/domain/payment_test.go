package domain_test

import (
	"strings"
	"testing"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	t.Run("creates payment successfully", func(t *testing.T) {
		payment, err := domain.NewPayment("test", domain.Money{Amount: 2000, Currency: "usd"}, "order #1", map[string]string{"order": "1"})

		require.NoError(t, err)
		assert.Equal(t, "test", payment.Provider)
		assert.Equal(t, int64(2000), payment.Amount)
		assert.Equal(t, "USD", payment.Currency)
		assert.Equal(t, domain.StatusPending, payment.Status)
		assert.Equal(t, 1, payment.Version)
		assert.Equal(t, "1", payment.Metadata["order"])
		assert.NotZero(t, payment.CreatedAt)
	})

	t.Run("rejects empty provider", func(t *testing.T) {
		_, err := domain.NewPayment("", domain.Money{Amount: 2000, Currency: "USD"}, "", nil)

		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		_, err := domain.NewPayment("test", domain.Money{Amount: 0, Currency: "USD"}, "", nil)

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("rejects amount above upper bound", func(t *testing.T) {
		_, err := domain.NewPayment("test", domain.Money{Amount: domain.MaxAmount + 1, Currency: "USD"}, "", nil)

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		for _, currency := range []string{"", "US", "USDT", "U$D"} {
			_, err := domain.NewPayment("test", domain.Money{Amount: 100, Currency: currency}, "", nil)
			assert.ErrorIs(t, err, domain.ErrInvalidCurrency, currency)
		}
	})

	t.Run("rejects long description", func(t *testing.T) {
		_, err := domain.NewPayment("test", domain.Money{Amount: 100, Currency: "EUR"}, strings.Repeat("x", 1001), nil)

		assert.ErrorIs(t, err, domain.ErrInvalidDescription)
	})

	t.Run("copies metadata", func(t *testing.T) {
		metadata := map[string]string{"k": "v"}
		payment, err := domain.NewPayment("test", domain.Money{Amount: 100, Currency: "EUR"}, "", metadata)
		require.NoError(t, err)

		metadata["k"] = "changed"
		assert.Equal(t, "v", payment.Metadata["k"])
	})
}

func TestPayment_StateTransitions(t *testing.T) {
	legal := []struct {
		from, to domain.PaymentStatus
	}{
		{domain.StatusPending, domain.StatusProcessing},
		{domain.StatusPending, domain.StatusSucceeded},
		{domain.StatusPending, domain.StatusFailed},
		{domain.StatusPending, domain.StatusCanceled},
		{domain.StatusProcessing, domain.StatusSucceeded},
		{domain.StatusProcessing, domain.StatusFailed},
		{domain.StatusProcessing, domain.StatusCanceled},
		{domain.StatusSucceeded, domain.StatusRefunded},
		{domain.StatusSucceeded, domain.StatusPartiallyRefunded},
		{domain.StatusPartiallyRefunded, domain.StatusRefunded},
	}
	for _, tc := range legal {
		t.Run(string(tc.from)+" -> "+string(tc.to), func(t *testing.T) {
			payment := &domain.Payment{Status: tc.from}

			require.NoError(t, payment.TransitionTo(tc.to))
			assert.Equal(t, tc.to, payment.Status)
		})
	}

	illegal := []struct {
		from, to domain.PaymentStatus
	}{
		{domain.StatusSucceeded, domain.StatusPending},
		{domain.StatusSucceeded, domain.StatusProcessing},
		{domain.StatusSucceeded, domain.StatusFailed},
		{domain.StatusProcessing, domain.StatusPending},
		{domain.StatusCanceled, domain.StatusSucceeded},
		{domain.StatusFailed, domain.StatusSucceeded},
		{domain.StatusRefunded, domain.StatusPartiallyRefunded},
		{domain.StatusPending, domain.StatusRefunded},
	}
	for _, tc := range illegal {
		t.Run("rejects "+string(tc.from)+" -> "+string(tc.to), func(t *testing.T) {
			payment := &domain.Payment{Status: tc.from}

			err := payment.TransitionTo(tc.to)

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, tc.from, payment.Status)
		})
	}

	t.Run("re-applying the current status is accepted", func(t *testing.T) {
		payment := &domain.Payment{Status: domain.StatusCanceled}

		require.NoError(t, payment.TransitionTo(domain.StatusCanceled))
		assert.Equal(t, domain.StatusCanceled, payment.Status)
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		payment := &domain.Payment{Status: domain.StatusPending}

		err := payment.TransitionTo("settled")

		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestPayment_EnsureCancelable(t *testing.T) {
	assert.NoError(t, (&domain.Payment{Status: domain.StatusPending}).EnsureCancelable())
	assert.NoError(t, (&domain.Payment{Status: domain.StatusProcessing}).EnsureCancelable())

	err := (&domain.Payment{Status: domain.StatusCanceled}).EnsureCancelable()
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	err = (&domain.Payment{Status: domain.StatusSucceeded}).EnsureCancelable()
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPayment_Clone(t *testing.T) {
	payment, err := domain.NewPayment("test", domain.Money{Amount: 100, Currency: "EUR"}, "", map[string]string{"a": "b"})
	require.NoError(t, err)
	payment.ProviderData = []byte(`{"x":1}`)

	clone := payment.Clone()
	clone.Metadata["a"] = "c"
	clone.ProviderData[0] = '['

	assert.Equal(t, "b", payment.Metadata["a"])
	assert.Equal(t, `{"x":1}`, string(payment.ProviderData))
}
