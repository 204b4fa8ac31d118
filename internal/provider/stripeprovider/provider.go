// Package stripeprovider adapts Stripe PaymentIntents to the provider
// contract.
package stripeprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

const (
	Key = "stripe"

	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 64 << 10
)

var statusMap = provider.StatusMap{
	string(stripe.PaymentIntentStatusRequiresPaymentMethod): domain.StatusPending,
	string(stripe.PaymentIntentStatusRequiresConfirmation):  domain.StatusPending,
	string(stripe.PaymentIntentStatusRequiresAction):        domain.StatusPending,
	string(stripe.PaymentIntentStatusProcessing):            domain.StatusProcessing,
	string(stripe.PaymentIntentStatusRequiresCapture):       domain.StatusProcessing,
	string(stripe.PaymentIntentStatusSucceeded):             domain.StatusSucceeded,
	string(stripe.PaymentIntentStatusCanceled):              domain.StatusCanceled,
}

var refundStatusMap = map[string]domain.RefundStatus{
	"pending":         domain.RefundPending,
	"requires_action": domain.RefundProcessing,
	"succeeded":       domain.RefundSucceeded,
	"failed":          domain.RefundFailed,
	"canceled":        domain.RefundCanceled,
}

type Provider struct {
	cfg    config.StripeConfig
	api    *client.API
	logger *slog.Logger
}

// New builds the provider. backends may be nil; it is only set to point the
// client at something other than api.stripe.com.
func New(cfg config.StripeConfig, backends *stripe.Backends) *Provider {
	if backends == nil && cfg.BaseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(cfg.BaseURL),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	var api client.API
	api.Init(cfg.SecretKey, backends)

	return &Provider{
		cfg:    cfg,
		api:    &api,
		logger: slog.Default(),
	}
}

func (p *Provider) Key() string { return Key }

func (p *Provider) OnInit(ctx context.Context, deps provider.Dependencies) error {
	if deps.Logger != nil {
		p.logger = deps.Logger
	}
	if p.cfg.SecretKey == "" {
		return errors.New("stripe secret key is required")
	}
	if deps.Production {
		if p.cfg.WebhookSecret == "" {
			return errors.New("stripe webhook secret is required in production")
		}
		if strings.HasPrefix(p.cfg.SecretKey, "sk_test_") {
			p.logger.Warn("stripe is using a test secret key in production")
		}
	}
	return nil
}

func (p *Provider) InitPayment(ctx context.Context, payment *domain.Payment) error {
	if err := provider.ValidatePayment(payment); err != nil {
		return err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(payment.Amount),
		Currency: stripe.String(strings.ToLower(payment.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if payment.Description != "" {
		params.Description = stripe.String(payment.Description)
	}
	params.Context = ctx
	params.SetIdempotencyKey(payment.ID.String())
	params.AddMetadata("payment_id", payment.ID.String())
	for k, v := range payment.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return describe(err)
	}

	raw, err := json.Marshal(map[string]any{
		"id":            pi.ID,
		"status":        pi.Status,
		"client_secret": pi.ClientSecret,
		"amount":        pi.Amount,
		"currency":      pi.Currency,
	})
	if err != nil {
		return fmt.Errorf("encode provider data: %w", err)
	}

	payment.ProviderID = pi.ID
	payment.ProviderData = raw
	payment.Status = statusMap.Map(string(pi.Status))
	return nil
}

func (p *Provider) CancelPayment(ctx context.Context, payment *domain.Payment) (json.RawMessage, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Cancel(payment.ProviderID, params)
	if err != nil {
		return nil, describe(err)
	}
	return json.Marshal(map[string]any{
		"id":     pi.ID,
		"status": pi.Status,
	})
}

func (p *Provider) RefundPayment(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*provider.RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(payment.ProviderID),
		Amount:        stripe.Int64(refund.Amount),
	}
	if reason := refundReason(refund.Reason); reason != "" {
		params.Reason = stripe.String(reason)
	}
	params.Context = ctx
	params.SetIdempotencyKey(refund.ID.String())

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, describe(err)
	}

	status, ok := refundStatusMap[string(r.Status)]
	if !ok {
		status = domain.RefundProcessing
	}
	raw, err := json.Marshal(map[string]any{
		"id":     r.ID,
		"status": r.Status,
		"amount": r.Amount,
	})
	if err != nil {
		return nil, err
	}
	return &provider.RefundResult{ProviderID: r.ID, Status: status, ProviderData: raw}, nil
}

// ParseWebhook verifies the Stripe-Signature header and translates the
// payment intent and charge events that carry a status change.
func (p *Provider) ParseWebhook(ctx context.Context, r *http.Request) (*provider.Notification, error) {
	if p.cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}

	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get(signatureHeader), p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	if event.Data == nil {
		return nil, nil
	}

	eventType := string(event.Type)
	switch eventType {
	case "payment_intent.succeeded",
		"payment_intent.processing",
		"payment_intent.canceled",
		"payment_intent.requires_action",
		"payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}

		// A failed attempt returns the intent to requires_payment_method and
		// the customer may retry, so the intent status decides, not the event.
		native := string(pi.Status)
		return &provider.Notification{
			Provider:          Key,
			ProviderPaymentID: pi.ID,
			NativeStatus:      native,
			Status:            statusMap.Map(native),
			EventID:           event.ID,
			Payload:           event.Data.Raw,
		}, nil

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			return nil, nil
		}

		status := domain.StatusPartiallyRefunded
		native := "partially_refunded"
		if charge.Refunded {
			status = domain.StatusRefunded
			native = "refunded"
		}
		return &provider.Notification{
			Provider:          Key,
			ProviderPaymentID: charge.PaymentIntent.ID,
			NativeStatus:      native,
			Status:            status,
			EventID:           event.ID,
			Payload:           event.Data.Raw,
		}, nil

	default:
		p.logger.Debug("unhandled stripe event", "type", eventType, "event_id", event.ID)
		return nil, nil
	}
}

func refundReason(r domain.RefundReason) string {
	switch r {
	case domain.ReasonDuplicate:
		return string(stripe.RefundReasonDuplicate)
	case domain.ReasonFraudulent:
		return string(stripe.RefundReasonFraudulent)
	case domain.ReasonRequestedByCustomer:
		return string(stripe.RefundReasonRequestedByCustomer)
	default:
		return ""
	}
}

// describe keeps Stripe's own message and code, which are more useful in
// logs than the raw JSON error body.
func describe(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe %s (%d): %s", stripeErr.Code, stripeErr.HTTPStatusCode, stripeErr.Msg)
	}
	return err
}
