package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

// WebhookService turns provider notifications into versioned status
// updates. Nothing it does is reported back to the provider; outcomes are
// only visible in the log.
type WebhookService struct {
	registry *provider.Registry
	payments application.PaymentRepository
	updater  *StatusUpdater
	cascade  *InvoiceCascade
	logger   *slog.Logger
}

func NewWebhookService(
	registry *provider.Registry,
	payments application.PaymentRepository,
	updater *StatusUpdater,
	cascade *InvoiceCascade,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		registry: registry,
		payments: payments,
		updater:  updater,
		cascade:  cascade,
		logger:   logger,
	}
}

// HandleWebhook authenticates and applies one inbound webhook. It never
// returns an error: every failure is logged and swallowed.
func (s *WebhookService) HandleWebhook(ctx context.Context, providerKey string, r *http.Request) {
	logger := s.logger.With("provider", providerKey)

	p, ok := s.registry.Get(providerKey)
	if !ok {
		logger.Warn("webhook for unknown provider")
		return
	}

	parser, ok := p.(provider.WebhookParser)
	if !ok {
		logger.Warn("provider does not accept webhooks")
		return
	}

	notification, err := parser.ParseWebhook(ctx, r)
	if err != nil {
		verr := application.NewWebhookVerificationError(providerKey, err)
		logger.Warn("webhook rejected", "code", verr.Code, "error", verr)
		return
	}
	if notification == nil {
		logger.Debug("webhook event ignored")
		return
	}

	if _, err := s.Reconcile(ctx, *notification); err != nil {
		logger.Error("webhook reconciliation failed",
			"provider_payment_id", notification.ProviderPaymentID,
			"error", err,
		)
	}
}

// Reconcile applies a canonical notification. It reports whether the
// payment row was written.
func (s *WebhookService) Reconcile(ctx context.Context, n provider.Notification) (bool, error) {
	logger := s.logger.With(
		"provider", n.Provider,
		"provider_payment_id", n.ProviderPaymentID,
		"native_status", n.NativeStatus,
		"event_id", n.EventID,
		"status", n.Status,
	)

	payment, err := s.payments.FindByProviderID(ctx, n.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			logger.Info("webhook for unknown payment acknowledged")
			return false, nil
		}
		return false, err
	}

	updated, applied, err := s.updater.UpdateStatus(ctx, StatusUpdate{
		PaymentID:       payment.ID,
		Status:          n.Status,
		ProviderData:    n.Payload,
		ExpectedVersion: payment.Version,
		Origin:          domain.OriginWebhook,
	})
	if err != nil {
		return false, err
	}
	if !applied {
		logger.Warn("webhook update lost version race, left for replay", "payment_id", payment.ID)
		return false, nil
	}

	if updated.Status == domain.StatusSucceeded {
		if err := s.cascade.OnPaymentSucceeded(ctx, updated); err != nil {
			logger.Error("invoice cascade failed", "payment_id", updated.ID, "error", err)
		}
	}
	return true, nil
}
