package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

type RefundService struct {
	registry *provider.Registry
	payments application.PaymentRepository
	refunds  application.RefundRepository
	updater  *StatusUpdater
	logger   *slog.Logger
}

func NewRefundService(
	registry *provider.Registry,
	store application.Store,
	updater *StatusUpdater,
	logger *slog.Logger,
) *RefundService {
	return &RefundService{
		registry: registry,
		payments: store.Payments,
		refunds:  store.Refunds,
		updater:  updater,
		logger:   logger,
	}
}

// Refund reserves the amount against the payment, asks the provider to move
// the money and then settles the payment status from the refunded total.
func (s *RefundService) Refund(ctx context.Context, cmd RefundCommand) (*domain.Refund, error) {
	payment, err := s.payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, application.Classify(err)
	}

	p, err := s.registry.Lookup(payment.Provider)
	if err != nil {
		return nil, err
	}
	refunder, ok := p.(provider.Refunder)
	if !ok {
		return nil, application.NewUnsupportedOperationError(payment.Provider, "refund")
	}

	existing, err := s.refunds.ListByPayment(ctx, payment.ID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	refund, err := domain.NewRefund(payment, cmd.Amount, cmd.Reason, existing)
	if err != nil {
		return nil, application.Classify(err)
	}

	if err := s.refunds.Create(ctx, refund); err != nil {
		return nil, application.NewInternalError(err)
	}

	// The refund only counts once the payment row has taken it; a concurrent
	// refund that read the same version loses here.
	_, applied, err := s.updater.Mutate(ctx, payment.ID, payment.Version, domain.OriginManual, func(p *domain.Payment) error {
		p.AttachRefund(refund.ID)
		return nil
	})
	if err != nil || !applied {
		s.closeRefund(ctx, refund, domain.RefundCanceled)
		if err != nil {
			return nil, application.Classify(err)
		}
		return nil, application.NewConcurrencyConflictError("payment", payment.ID)
	}

	result, err := refunder.RefundPayment(ctx, payment, refund)
	if err != nil {
		s.closeRefund(ctx, refund, domain.RefundFailed)
		return nil, application.NewProviderError(payment.Provider, err)
	}

	refund.ProviderID = result.ProviderID
	refund.Status = result.Status
	refund.ProviderData = result.ProviderData
	refund.UpdatedAt = time.Now().UTC()
	if err := s.refunds.Update(ctx, refund); err != nil {
		return nil, application.NewInternalError(err)
	}

	if !refund.Counts() {
		return refund, nil
	}

	all, err := s.refunds.ListByPayment(ctx, payment.ID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	target := domain.StatusAfterRefund(payment.Amount, domain.RefundedTotal(all))

	_, err = s.updater.MutateLatest(ctx, payment.ID, domain.OriginManual, func(p *domain.Payment) error {
		if err := p.TransitionTo(target); err != nil {
			return application.NewDomainInvariantError(err)
		}
		return nil
	})
	if err != nil {
		return nil, application.Classify(err)
	}

	s.logger.Info("payment refunded",
		"payment_id", payment.ID,
		"refund_id", refund.ID,
		"amount", refund.Amount,
		"status", target,
	)
	return refund, nil
}

func (s *RefundService) closeRefund(ctx context.Context, refund *domain.Refund, status domain.RefundStatus) {
	refund.Status = status
	refund.UpdatedAt = time.Now().UTC()
	if err := s.refunds.Update(ctx, refund); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("failed to close refund",
			"refund_id", refund.ID,
			"status", status,
			"error", err,
		)
	}
}
