package mollie

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/config"
)

// RetryClient retries transient Mollie failures with exponential backoff.
// Writes carry an idempotency key, so a retried create is never doubled.
type RetryClient struct {
	inner      API
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner API, cfg config.RetryConfig) *RetryClient {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
	}
}

func (r *RetryClient) CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (*PaymentResponse, error) {
	return retry(r, ctx, func(ctx context.Context) (*PaymentResponse, error) {
		return r.inner.CreatePayment(ctx, req, idempotencyKey)
	})
}

func (r *RetryClient) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	return retry(r, ctx, func(ctx context.Context) (*PaymentResponse, error) {
		return r.inner.GetPayment(ctx, id)
	})
}

// CancelPayment is not retried: a cancel that reached Mollie but timed out
// would fail on the second attempt with a misleading error.
func (r *RetryClient) CancelPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	return r.inner.CancelPayment(ctx, id)
}

func (r *RetryClient) CreateRefund(ctx context.Context, paymentID string, req CreateRefundRequest, idempotencyKey string) (*RefundResponse, error) {
	return retry(r, ctx, func(ctx context.Context) (*RefundResponse, error) {
		return r.inner.CreateRefund(ctx, paymentID, req, idempotencyKey)
	})
}

func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if mollieErr, ok := IsMollieError(err); ok {
		return mollieErr.IsRetryable()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// backoff is exponential with up to 10% jitter.
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	if base <= 0 {
		return 0
	}
	return base + time.Duration(rand.Int64N(int64(base)/10+1))
}
