package mollie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// API is the slice of the Mollie Payments API this provider calls.
type API interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (*PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*PaymentResponse, error)
	CancelPayment(ctx context.Context, id string) (*PaymentResponse, error)
	CreateRefund(ctx context.Context, paymentID string, req CreateRefundRequest, idempotencyKey string) (*RefundResponse, error)
}

type HTTPClient struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewHTTPClient(cfg config.MollieConfig) *HTTPClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &HTTPClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetAuthToken(cfg.APIKey).
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *HTTPClient) CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (*PaymentResponse, error) {
	return sendRequest[PaymentResponse](c, ctx, http.MethodPost, "/payments", req, idempotencyKey)
}

func (c *HTTPClient) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	return sendRequest[PaymentResponse](c, ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, "")
}

func (c *HTTPClient) CancelPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	return sendRequest[PaymentResponse](c, ctx, http.MethodDelete, "/payments/"+url.PathEscape(id), nil, "")
}

func (c *HTTPClient) CreateRefund(ctx context.Context, paymentID string, req CreateRefundRequest, idempotencyKey string) (*RefundResponse, error) {
	path := fmt.Sprintf("/payments/%s/refunds", url.PathEscape(paymentID))
	return sendRequest[RefundResponse](c, ctx, http.MethodPost, path, req, idempotencyKey)
}

func sendRequest[Resp any](c *HTTPClient, ctx context.Context, method, path string, body any, idempotencyKey string) (*Resp, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result Resp
	var apiErr Error

	req := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if idempotencyKey != "" {
		req.SetHeader("Idempotency-Key", idempotencyKey)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}

	if resp.IsError() {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}
		if apiErr.Title == "" {
			apiErr.Title = http.StatusText(resp.StatusCode())
			apiErr.Detail = string(resp.Body())
		}
		return nil, &apiErr
	}

	return &result, nil
}
