package mollie_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/mollie"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/mollie/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastRetry = config.RetryConfig{BaseDelay: time.Millisecond, MaxRetries: 3}

func createRequest() mollie.CreatePaymentRequest {
	return mollie.CreatePaymentRequest{
		Amount:      mollie.Amount{Currency: "EUR", Value: "10.00"},
		Description: "Order #12",
	}
}

func TestRetryClient_CreatePayment_Success(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	expected := &mollie.PaymentResponse{ID: "tr_1", Status: "open"}
	mockAPI.EXPECT().
		CreatePayment(mock.Anything, createRequest(), "idem-key").
		Return(expected, nil).
		Once()

	resp, err := retryClient.CreatePayment(context.Background(), createRequest(), "idem-key")

	require.NoError(t, err)
	assert.Equal(t, expected, resp)
}

func TestRetryClient_CreatePayment_RetriesOn5xx(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	mockAPI.EXPECT().
		CreatePayment(mock.Anything, createRequest(), "idem-key").
		Return(nil, &mollie.Error{Status: 503, Title: "Service Unavailable"}).
		Twice()
	mockAPI.EXPECT().
		CreatePayment(mock.Anything, createRequest(), "idem-key").
		Return(&mollie.PaymentResponse{ID: "tr_1"}, nil).
		Once()

	resp, err := retryClient.CreatePayment(context.Background(), createRequest(), "idem-key")

	require.NoError(t, err)
	assert.Equal(t, "tr_1", resp.ID)
}

func TestRetryClient_CreatePayment_RetriesOnRateLimit(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	mockAPI.EXPECT().
		GetPayment(mock.Anything, "tr_1").
		Return(nil, &mollie.Error{Status: 429, Title: "Too Many Requests"}).
		Once()
	mockAPI.EXPECT().
		GetPayment(mock.Anything, "tr_1").
		Return(&mollie.PaymentResponse{ID: "tr_1", Status: "paid"}, nil).
		Once()

	resp, err := retryClient.GetPayment(context.Background(), "tr_1")

	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
}

func TestRetryClient_DoesNotRetryOn4xx(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	expectedErr := &mollie.Error{Status: 422, Title: "Unprocessable Entity", Detail: "The amount is too low", Field: "amount"}
	mockAPI.EXPECT().
		CreatePayment(mock.Anything, createRequest(), "idem-key").
		Return(nil, expectedErr).
		Once()

	resp, err := retryClient.CreatePayment(context.Background(), createRequest(), "idem-key")

	require.Error(t, err)
	assert.Nil(t, resp)
	mollieErr, ok := mollie.IsMollieError(err)
	require.True(t, ok)
	assert.Equal(t, "amount", mollieErr.Field)
}

func TestRetryClient_MaxRetriesExceeded(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	mockAPI.EXPECT().
		CreateRefund(mock.Anything, "tr_1", mock.Anything, "refund-key").
		Return(nil, errors.New("connection reset by peer")).
		Times(3)

	_, err := retryClient.CreateRefund(context.Background(), "tr_1", mollie.CreateRefundRequest{}, "refund-key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum retries exceeded")
}

func TestRetryClient_CancelIsNotRetried(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, fastRetry)

	mockAPI.EXPECT().
		CancelPayment(mock.Anything, "tr_1").
		Return(nil, &mollie.Error{Status: 500, Title: "Internal Server Error"}).
		Once()

	_, err := retryClient.CancelPayment(context.Background(), "tr_1")
	assert.Error(t, err)
}

func TestRetryClient_RespectsContextCancellation(t *testing.T) {
	mockAPI := mocks.NewMockAPI(t)
	retryClient := mollie.NewRetryClient(mockAPI, config.RetryConfig{BaseDelay: time.Second, MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	mockAPI.EXPECT().
		GetPayment(mock.Anything, "tr_1").
		RunAndReturn(func(ctx context.Context, id string) (*mollie.PaymentResponse, error) {
			cancel()
			return nil, &mollie.Error{Status: 502, Title: "Bad Gateway"}
		}).
		Once()

	_, err := retryClient.GetPayment(ctx, "tr_1")
	assert.ErrorIs(t, err, context.Canceled)
}
