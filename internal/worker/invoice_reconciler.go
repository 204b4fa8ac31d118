package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
)

const defaultBatchSize = 100

// settledStatuses are the payment states whose invoice must be paid. A
// payment can be refunded before the reconciler first sees it.
var settledStatuses = []domain.PaymentStatus{
	domain.StatusSucceeded,
	domain.StatusPartiallyRefunded,
	domain.StatusRefunded,
}

// PaymentSucceededHandler is the part of the invoice cascade the reconciler
// replays.
type PaymentSucceededHandler interface {
	OnPaymentSucceeded(ctx context.Context, payment *domain.Payment) error
}

// InvoiceReconciler replays the payment-to-invoice cascade for settled
// payments. It repairs invoices left unpaid when the process died
// between the payment write and the invoice write. Replaying an invoice
// that is already paid writes nothing.
type InvoiceReconciler struct {
	payments  application.PaymentRepository
	cascade   PaymentSucceededHandler
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewInvoiceReconciler(
	payments application.PaymentRepository,
	cascade PaymentSucceededHandler,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *InvoiceReconciler {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &InvoiceReconciler{
		payments:  payments,
		cascade:   cascade,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (r *InvoiceReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting invoice reconciler", "interval", r.interval, "batch_size", r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping invoice reconciler")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce walks every settled payment that references an invoice, a page
// of batchSize at a time, and replays the cascade for each.
func (r *InvoiceReconciler) RunOnce(ctx context.Context) {
	var replayed, failed int
	for offset := 0; ; offset += r.batchSize {
		if ctx.Err() != nil {
			return
		}

		page, err := r.payments.List(ctx, application.PaymentFilter{
			Statuses:   settledStatuses,
			HasInvoice: true,
			Limit:      r.batchSize,
			Offset:     offset,
		})
		if err != nil {
			r.logger.Error("failed to fetch settled payments", "offset", offset, "error", err)
			return
		}

		for _, p := range page {
			if err := r.cascade.OnPaymentSucceeded(ctx, p); err != nil {
				r.logger.Error("invoice cascade replay failed", "payment_id", p.ID, "invoice_id", *p.InvoiceID, "error", err)
				failed++
				continue
			}
			replayed++
		}

		if len(page) < r.batchSize {
			break
		}
	}

	r.logger.Debug("invoice reconciliation cycle finished", "replayed", replayed, "failed", failed)
}
