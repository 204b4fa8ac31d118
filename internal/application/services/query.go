package services

import (
	"context"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

const maxPageSize = 100

type QueryService struct {
	payments application.PaymentRepository
	invoices application.InvoiceRepository
	refunds  application.RefundRepository
}

func NewQueryService(store application.Store) *QueryService {
	return &QueryService{
		payments: store.Payments,
		invoices: store.Invoices,
		refunds:  store.Refunds,
	}
}

func (s *QueryService) FindPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, application.Classify(err)
	}
	return payment, nil
}

func (s *QueryService) ListPayments(ctx context.Context, filter application.PaymentFilter) ([]*domain.Payment, error) {
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, application.Classify(err)
	}
	return payments, nil
}

func (s *QueryService) FindInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, application.Classify(err)
	}
	return invoice, nil
}

func (s *QueryService) ListRefunds(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error) {
	if _, err := s.payments.FindByID(ctx, paymentID); err != nil {
		return nil, application.Classify(err)
	}
	refunds, err := s.refunds.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, application.Classify(err)
	}
	return refunds, nil
}
