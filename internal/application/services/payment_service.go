package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/google/uuid"
)

type PaymentService struct {
	registry *provider.Registry
	payments application.PaymentRepository
	invoices application.InvoiceRepository
	refunds  application.RefundRepository
	updater  *StatusUpdater
	cascade  *InvoiceCascade
	logger   *slog.Logger
}

func NewPaymentService(
	registry *provider.Registry,
	store application.Store,
	updater *StatusUpdater,
	cascade *InvoiceCascade,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		registry: registry,
		payments: store.Payments,
		invoices: store.Invoices,
		refunds:  store.Refunds,
		updater:  updater,
		cascade:  cascade,
		logger:   logger,
	}
}

// CreatePayment validates the request, starts the payment with the chosen
// provider and persists the result at version 1.
func (s *PaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*domain.Payment, error) {
	p, err := s.registry.Lookup(cmd.Provider)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(cmd.Provider, domain.Money{Amount: cmd.Amount, Currency: cmd.Currency}, cmd.Description, cmd.Metadata)
	if err != nil {
		return nil, application.NewValidationError(err)
	}
	payment.RedirectURL = cmd.RedirectURL

	if cmd.InvoiceID != nil {
		if _, err := s.invoices.FindByID(ctx, *cmd.InvoiceID); err != nil {
			return nil, application.Classify(err)
		}
		payment.InvoiceID = cmd.InvoiceID
	}

	if err := p.InitPayment(ctx, payment); err != nil {
		if _, ok := application.IsServiceError(err); ok {
			return nil, err
		}
		return nil, application.NewProviderError(cmd.Provider, err)
	}
	if payment.ProviderID == "" {
		return nil, application.NewProviderError(cmd.Provider, errors.New("provider returned no payment id"))
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, application.Classify(err)
	}

	s.logger.Info("payment created",
		"payment_id", payment.ID,
		"provider", payment.Provider,
		"provider_payment_id", payment.ProviderID,
		"status", payment.Status,
		"amount", payment.Amount,
		"currency", payment.Currency,
	)

	if payment.Status == domain.StatusSucceeded {
		if err := s.cascade.OnPaymentSucceeded(ctx, payment); err != nil {
			s.logger.Error("invoice cascade failed", "payment_id", payment.ID, "error", err)
		}
	}

	return payment, nil
}

// CancelPayment is legal only while the payment is pending or processing.
func (s *PaymentService) CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, application.Classify(err)
	}
	if err := payment.EnsureCancelable(); err != nil {
		return nil, application.NewDomainInvariantError(err)
	}

	p, err := s.registry.Lookup(payment.Provider)
	if err != nil {
		return nil, err
	}
	canceler, ok := p.(provider.Canceler)
	if !ok {
		return nil, application.NewUnsupportedOperationError(payment.Provider, "cancel")
	}

	data, err := canceler.CancelPayment(ctx, payment)
	if err != nil {
		return nil, application.NewProviderError(payment.Provider, err)
	}

	updated, applied, err := s.updater.UpdateStatus(ctx, StatusUpdate{
		PaymentID:       payment.ID,
		Status:          domain.StatusCanceled,
		ProviderData:    data,
		ExpectedVersion: payment.Version,
		Origin:          domain.OriginManual,
	})
	if err != nil {
		return nil, application.Classify(err)
	}
	if !applied {
		return nil, application.NewConcurrencyConflictError("payment", payment.ID)
	}
	return updated, nil
}

// UpdatePayment applies an administrative edit and cascades a manual move
// to succeeded onto the invoice.
func (s *PaymentService) UpdatePayment(ctx context.Context, edit ManualEdit) (*domain.Payment, error) {
	before, err := s.payments.FindByID(ctx, edit.PaymentID)
	if err != nil {
		return nil, application.Classify(err)
	}

	updated, err := s.updater.ApplyManualEdit(ctx, edit)
	if err != nil {
		return nil, application.Classify(err)
	}

	if updated.Status == domain.StatusSucceeded && before.Status != domain.StatusSucceeded {
		if err := s.cascade.OnPaymentSucceeded(ctx, updated); err != nil {
			s.logger.Error("invoice cascade failed", "payment_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}
