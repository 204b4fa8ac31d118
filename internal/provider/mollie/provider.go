// Package mollie adapts the Mollie Payments API to the provider contract.
// Mollie webhooks carry only a payment id and no signature; the payment is
// fetched back from the API, which is what authenticates the event.
package mollie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

const Key = "mollie"

var statusMap = provider.StatusMap{
	"open":       domain.StatusPending,
	"pending":    domain.StatusPending,
	"authorized": domain.StatusPending,
	"paid":       domain.StatusSucceeded,
	"failed":     domain.StatusFailed,
	"canceled":   domain.StatusCanceled,
	"expired":    domain.StatusCanceled,
}

var refundStatusMap = map[string]domain.RefundStatus{
	"queued":     domain.RefundPending,
	"pending":    domain.RefundPending,
	"processing": domain.RefundProcessing,
	"refunded":   domain.RefundSucceeded,
	"failed":     domain.RefundFailed,
	"canceled":   domain.RefundCanceled,
}

type Provider struct {
	cfg      config.MollieConfig
	api      API
	logger   *slog.Logger
	testMode bool

	webhookURL string
}

func New(cfg config.MollieConfig, api API) *Provider {
	return &Provider{
		cfg:      cfg,
		api:      api,
		logger:   slog.Default(),
		testMode: strings.HasPrefix(cfg.APIKey, "test_"),
	}
}

func (p *Provider) Key() string { return Key }

// TestMode reports whether the API key is a Mollie test key.
func (p *Provider) TestMode() bool { return p.testMode }

func (p *Provider) OnInit(ctx context.Context, deps provider.Dependencies) error {
	if deps.Logger != nil {
		p.logger = deps.Logger
	}
	if p.cfg.APIKey == "" {
		return errors.New("mollie api key is required")
	}

	p.webhookURL = p.cfg.WebhookURL
	if p.webhookURL == "" && deps.PublicURL != "" {
		p.webhookURL = strings.TrimSuffix(deps.PublicURL, "/") + "/billing/webhooks/" + Key
	}

	if deps.Production {
		if err := requirePublicURL("webhook url", p.webhookURL); err != nil {
			return err
		}
		if p.cfg.RedirectURL != "" {
			if err := requirePublicURL("redirect url", p.cfg.RedirectURL); err != nil {
				return err
			}
		}
		if p.testMode {
			p.logger.Warn("mollie is using a test api key in production")
		}
	}

	p.logger.Info("mollie provider configured", "test_mode", p.testMode, "webhook_url", p.webhookURL)
	return nil
}

func (p *Provider) InitPayment(ctx context.Context, payment *domain.Payment) error {
	if err := provider.ValidatePayment(payment); err != nil {
		return err
	}

	description := payment.Description
	if description == "" {
		description = "Payment " + payment.ID.String()
	}
	redirectURL := payment.RedirectURL
	if redirectURL == "" {
		redirectURL = p.cfg.RedirectURL
	}

	metadata := map[string]string{"payment_id": payment.ID.String()}
	for k, v := range payment.Metadata {
		metadata[k] = v
	}

	resp, err := p.api.CreatePayment(ctx, CreatePaymentRequest{
		Amount:      FormatAmount(payment.Amount, payment.Currency),
		Description: description,
		RedirectURL: redirectURL,
		WebhookURL:  p.webhookURL,
		Metadata:    metadata,
	}, payment.ID.String())
	if err != nil {
		return err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode provider data: %w", err)
	}

	payment.ProviderID = resp.ID
	payment.ProviderData = raw
	payment.Status = statusMap.Map(resp.Status)
	if resp.Links.Checkout != nil {
		payment.CheckoutURL = resp.Links.Checkout.Href
	}
	return nil
}

func (p *Provider) CancelPayment(ctx context.Context, payment *domain.Payment) (json.RawMessage, error) {
	resp, err := p.api.CancelPayment(ctx, payment.ProviderID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

func (p *Provider) RefundPayment(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*provider.RefundResult, error) {
	resp, err := p.api.CreateRefund(ctx, payment.ProviderID, CreateRefundRequest{
		Amount:      FormatAmount(refund.Amount, refund.Currency),
		Description: string(refund.Reason),
	}, refund.ID.String())
	if err != nil {
		return nil, err
	}

	status, ok := refundStatusMap[resp.Status]
	if !ok {
		status = domain.RefundProcessing
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &provider.RefundResult{ProviderID: resp.ID, Status: status, ProviderData: raw}, nil
}

// ParseWebhook reads the posted payment id and fetches the payment. An id
// Mollie does not know is a verification failure.
func (p *Provider) ParseWebhook(ctx context.Context, r *http.Request) (*provider.Notification, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse webhook form: %w", err)
	}
	id := r.PostForm.Get("id")
	if id == "" {
		return nil, errors.New("webhook carries no payment id")
	}
	if !strings.HasPrefix(id, "tr_") {
		p.logger.Debug("ignoring non-payment mollie webhook", "id", id)
		return nil, nil
	}

	resp, err := p.api.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch mollie payment %s: %w", id, err)
	}

	native := resp.Status
	status := statusMap.Map(native)
	if status == domain.StatusSucceeded && resp.AmountRefunded != nil {
		refunded, total := parseValue(resp.AmountRefunded.Value), parseValue(resp.Amount.Value)
		switch {
		case refunded > 0 && refunded >= total:
			native, status = "refunded", domain.StatusRefunded
		case refunded > 0:
			native, status = "partially_refunded", domain.StatusPartiallyRefunded
		}
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &provider.Notification{
		Provider:          Key,
		ProviderPaymentID: resp.ID,
		NativeStatus:      native,
		Status:            status,
		Payload:           payload,
	}, nil
}

// FormatAmount renders minor units as Mollie's decimal string, with as many
// decimals as the currency has minor-unit digits.
func FormatAmount(minor int64, currency string) Amount {
	currency = strings.ToUpper(currency)
	return Amount{Currency: currency, Value: domain.FormatAmount(minor, currency)}
}

func parseValue(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func requirePublicURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("mollie %s is required in production", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("mollie %s is invalid: %w", name, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("mollie %s must use https in production", name)
	}
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".local") {
		return fmt.Errorf("mollie %s must be publicly reachable in production", name)
	}
	return nil
}
