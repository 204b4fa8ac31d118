package application

import (
	"context"
	"errors"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

// Store errors shared by every repository implementation.
var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrRefundNotFound         = errors.New("refund not found")
	ErrVersionConflict        = errors.New("version conflict")
	ErrDuplicateProviderID    = errors.New("provider id already exists")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
)

// PaymentFilter narrows List. Status and Statuses combine with AND.
type PaymentFilter struct {
	Provider   string
	Status     domain.PaymentStatus
	Statuses   []domain.PaymentStatus
	InvoiceID  *uuid.UUID
	HasInvoice bool
	Limit      int
	Offset     int
}

// PaymentRepository is the port for payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// FindByProviderID looks up the payment a provider knows by its own id.
	FindByProviderID(ctx context.Context, providerID string) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error)
	// UpdateIfVersion persists payment only while the stored version still
	// equals expected, then sets payment.Version to expected+1. A stale
	// expected version yields ErrVersionConflict and writes nothing.
	UpdateIfVersion(ctx context.Context, payment *domain.Payment, expected int) error
}

// InvoiceRepository is the port for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	UpdateIfVersion(ctx context.Context, invoice *domain.Invoice, expected int) error
}

// RefundRepository is the port for refund persistence.
type RefundRepository interface {
	Create(ctx context.Context, refund *domain.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error)
	Update(ctx context.Context, refund *domain.Refund) error
}

// Store bundles the three repositories a backend provides.
type Store struct {
	Payments PaymentRepository
	Invoices InvoiceRepository
	Refunds  RefundRepository
}
