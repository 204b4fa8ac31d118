package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
)

// InvoiceCascade keeps a payment and its invoice in agreement about whether
// money has arrived. Writes on each side are independent versioned writes;
// a crash between them is repaired by replaying OnPaymentSucceeded.
type InvoiceCascade struct {
	invoices    application.InvoiceRepository
	payments    application.PaymentRepository
	updater     *StatusUpdater
	logger      *slog.Logger
	maxAttempts int
}

func NewInvoiceCascade(
	invoices application.InvoiceRepository,
	payments application.PaymentRepository,
	updater *StatusUpdater,
	logger *slog.Logger,
) *InvoiceCascade {
	return &InvoiceCascade{
		invoices:    invoices,
		payments:    payments,
		updater:     updater,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
	}
}

// OnPaymentSucceeded marks the linked invoice paid and points it at the
// payment. Re-running it for an already paid invoice writes nothing.
func (c *InvoiceCascade) OnPaymentSucceeded(ctx context.Context, payment *domain.Payment) error {
	if payment.InvoiceID == nil {
		return nil
	}

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		invoice, err := c.invoices.FindByID(ctx, *payment.InvoiceID)
		if err != nil {
			if errors.Is(err, application.ErrInvoiceNotFound) {
				c.logger.Warn("payment references a missing invoice",
					"payment_id", payment.ID,
					"invoice_id", *payment.InvoiceID,
				)
				return nil
			}
			return err
		}

		expected := invoice.Version
		changed, err := invoice.MarkPaid(payment.ID, time.Now().UTC())
		if err != nil {
			c.logger.Warn("invoice cannot be marked paid",
				"invoice_id", invoice.ID,
				"invoice_status", invoice.Status,
				"payment_id", payment.ID,
				"error", err,
			)
			return application.NewDomainInvariantError(err)
		}
		if !changed {
			return nil
		}

		err = c.invoices.UpdateIfVersion(ctx, invoice, expected)
		if errors.Is(err, application.ErrVersionConflict) {
			c.logger.Warn("invoice version conflict during cascade, retrying",
				"invoice_id", invoice.ID,
				"expected_version", expected,
			)
			continue
		}
		if err != nil {
			return err
		}

		c.logger.Info("invoice marked paid",
			"invoice_id", invoice.ID,
			"payment_id", payment.ID,
			"version", invoice.Version,
		)
		return nil
	}

	return application.NewConcurrencyConflictError("invoice", *payment.InvoiceID)
}

// OnInvoiceStatusChanged mirrors a direct invoice edit to paid onto the
// payment. It fires only on a real status edge and leaves settled payments
// alone, so it cannot bounce back through OnPaymentSucceeded.
func (c *InvoiceCascade) OnInvoiceStatusChanged(ctx context.Context, previous domain.InvoiceStatus, invoice *domain.Invoice) error {
	if previous == invoice.Status || invoice.Status != domain.InvoicePaid || invoice.PaymentID == nil {
		return nil
	}

	payment, err := c.payments.FindByID(ctx, *invoice.PaymentID)
	if err != nil {
		return err
	}
	if payment.IsSettled() {
		return nil
	}

	_, applied, err := c.updater.UpdateStatus(ctx, StatusUpdate{
		PaymentID:       payment.ID,
		Status:          domain.StatusSucceeded,
		ExpectedVersion: payment.Version,
		Origin:          domain.OriginManual,
	})
	if err != nil {
		return err
	}
	if !applied {
		return application.NewConcurrencyConflictError("payment", payment.ID)
	}
	return nil
}
