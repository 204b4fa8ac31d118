// Package memory is a process-local payment record store used by tests and
// by the demo configuration.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

type PaymentRepository struct {
	mu         sync.RWMutex
	payments   map[uuid.UUID]*domain.Payment
	byProvider map[string]uuid.UUID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:   make(map[uuid.UUID]*domain.Payment),
		byProvider: make(map[string]uuid.UUID),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ProviderID != "" {
		if _, exists := r.byProvider[p.ProviderID]; exists {
			return application.ErrDuplicateProviderID
		}
		r.byProvider[p.ProviderID] = p.ID
	}
	r.payments[p.ID] = p.Clone()
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, application.ErrPaymentNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProvider[providerID]
	if !ok {
		return nil, application.ErrPaymentNotFound
	}
	return r.payments[id].Clone(), nil
}

func (r *PaymentRepository) List(ctx context.Context, filter application.PaymentFilter) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Payment
	for _, p := range r.payments {
		if filter.Provider != "" && p.Provider != filter.Provider {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, p.Status) {
			continue
		}
		if filter.InvoiceID != nil && (p.InvoiceID == nil || *p.InvoiceID != *filter.InvoiceID) {
			continue
		}
		if filter.HasInvoice && p.InvoiceID == nil {
			continue
		}
		out = append(out, p.Clone())
	}

	slices.SortFunc(out, func(a, b *domain.Payment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *PaymentRepository) UpdateIfVersion(ctx context.Context, p *domain.Payment, expected int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.payments[p.ID]
	if !ok {
		return application.ErrPaymentNotFound
	}
	if current.Version != expected {
		return application.ErrVersionConflict
	}

	if p.ProviderID != current.ProviderID && p.ProviderID != "" {
		if _, taken := r.byProvider[p.ProviderID]; taken {
			return application.ErrDuplicateProviderID
		}
		delete(r.byProvider, current.ProviderID)
		r.byProvider[p.ProviderID] = p.ID
	}

	p.Version = expected + 1
	p.UpdatedAt = time.Now().UTC()
	r.payments[p.ID] = p.Clone()
	return nil
}
