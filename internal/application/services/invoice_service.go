package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
)

type InvoiceService struct {
	invoices application.InvoiceRepository
	payments application.PaymentRepository
	updater  *StatusUpdater
	cascade  *InvoiceCascade
	logger   *slog.Logger
}

func NewInvoiceService(
	store application.Store,
	updater *StatusUpdater,
	cascade *InvoiceCascade,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices: store.Invoices,
		payments: store.Payments,
		updater:  updater,
		cascade:  cascade,
		logger:   logger,
	}
}

// CreateInvoice stores a new invoice and, when it names a payment, links the
// payment back to it.
func (s *InvoiceService) CreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) (*domain.Invoice, error) {
	var payment *domain.Payment
	if cmd.PaymentID != nil {
		p, err := s.payments.FindByID(ctx, *cmd.PaymentID)
		if err != nil {
			return nil, application.Classify(err)
		}
		if p.InvoiceID != nil {
			return nil, application.NewDomainInvariantError(domain.NewInvoiceAlreadyLinkedError(p.ID, *p.InvoiceID))
		}
		payment = p
	}

	invoice, err := domain.NewInvoice(domain.InvoiceParams{
		Number:        cmd.Number,
		Status:        cmd.Status,
		Currency:      cmd.Currency,
		Items:         cmd.Items,
		TaxAmount:     cmd.TaxAmount,
		DueDate:       cmd.DueDate,
		PaymentID:     cmd.PaymentID,
		CustomerName:  cmd.CustomerName,
		CustomerEmail: cmd.CustomerEmail,
		Notes:         cmd.Notes,
	}, time.Now().UTC())
	if err != nil {
		return nil, application.NewValidationError(err)
	}
	if payment != nil && invoice.Status == domain.InvoicePaid {
		if err := ensurePayable(payment); err != nil {
			return nil, err
		}
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, application.Classify(err)
	}

	s.logger.Info("invoice created",
		"invoice_id", invoice.ID,
		"number", invoice.Number,
		"status", invoice.Status,
		"amount", invoice.Amount,
	)

	if payment == nil {
		return invoice, nil
	}

	_, err = s.updater.MutateLatest(ctx, payment.ID, domain.OriginManual, func(p *domain.Payment) error {
		if err := p.LinkInvoice(invoice.ID); err != nil {
			return application.NewDomainInvariantError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to link payment to invoice",
			"invoice_id", invoice.ID,
			"payment_id", payment.ID,
			"error", err,
		)
		return invoice, nil
	}

	if err := s.cascade.OnInvoiceStatusChanged(ctx, "", invoice); err != nil {
		s.logger.Error("payment cascade failed", "invoice_id", invoice.ID, "error", err)
	}
	return invoice, nil
}

// UpdateStatus moves an invoice to a new status. Moving it to paid pushes
// the linked payment to succeeded.
func (s *InvoiceService) UpdateStatus(ctx context.Context, cmd UpdateInvoiceStatusCommand) (*domain.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, cmd.InvoiceID)
	if err != nil {
		return nil, application.Classify(err)
	}

	expected := invoice.Version
	if cmd.Version != 0 && cmd.Version != expected {
		return nil, application.NewConcurrencyConflictError("invoice", invoice.ID)
	}

	if cmd.Status == domain.InvoicePaid && invoice.PaymentID != nil {
		payment, err := s.payments.FindByID(ctx, *invoice.PaymentID)
		if err != nil && !errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.Classify(err)
		}
		if payment != nil {
			if err := ensurePayable(payment); err != nil {
				return nil, err
			}
		}
	}

	previous := invoice.Status
	if err := invoice.SetStatus(cmd.Status, time.Now().UTC()); err != nil {
		return nil, application.Classify(err)
	}

	if err := s.invoices.UpdateIfVersion(ctx, invoice, expected); err != nil {
		return nil, application.Classify(err)
	}

	s.logger.Info("invoice status updated",
		"invoice_id", invoice.ID,
		"from", previous,
		"to", invoice.Status,
		"version", invoice.Version,
	)

	if err := s.cascade.OnInvoiceStatusChanged(ctx, previous, invoice); err != nil {
		s.logger.Error("payment cascade failed", "invoice_id", invoice.ID, "error", err)
	}
	return invoice, nil
}

// ensurePayable refuses to mark an invoice paid by a payment that can no
// longer succeed.
func ensurePayable(payment *domain.Payment) error {
	if payment.IsSettled() {
		return nil
	}
	if err := payment.CanTransitionTo(domain.StatusSucceeded); err != nil {
		return application.NewDomainInvariantError(err)
	}
	return nil
}
