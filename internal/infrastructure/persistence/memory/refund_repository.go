package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

type RefundRepository struct {
	mu      sync.RWMutex
	refunds map[uuid.UUID]*domain.Refund
}

func NewRefundRepository() *RefundRepository {
	return &RefundRepository{
		refunds: make(map[uuid.UUID]*domain.Refund),
	}
}

func (r *RefundRepository) Create(ctx context.Context, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refunds[refund.ID] = refund.Clone()
	return nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refund, ok := r.refunds[id]
	if !ok {
		return nil, application.ErrRefundNotFound
	}
	return refund.Clone(), nil
}

func (r *RefundRepository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Refund
	for _, refund := range r.refunds {
		if refund.PaymentID == paymentID {
			out = append(out, refund.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *domain.Refund) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *RefundRepository) Update(ctx context.Context, refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refunds[refund.ID]; !ok {
		return application.ErrRefundNotFound
	}
	refund.UpdatedAt = time.Now().UTC()
	r.refunds[refund.ID] = refund.Clone()
	return nil
}
