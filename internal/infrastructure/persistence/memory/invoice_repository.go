package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*domain.Invoice
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		invoices: make(map[uuid.UUID]*domain.Invoice),
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invoices {
		if existing.Number == inv.Number {
			return application.ErrDuplicateInvoiceNumber
		}
	}
	r.invoices[inv.ID] = inv.Clone()
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, application.ErrInvoiceNotFound
	}
	return inv.Clone(), nil
}

func (r *InvoiceRepository) UpdateIfVersion(ctx context.Context, inv *domain.Invoice, expected int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.invoices[inv.ID]
	if !ok {
		return application.ErrInvoiceNotFound
	}
	if current.Version != expected {
		return application.ErrVersionConflict
	}

	inv.Version = expected + 1
	inv.UpdatedAt = time.Now().UTC()
	r.invoices[inv.ID] = inv.Clone()
	return nil
}
