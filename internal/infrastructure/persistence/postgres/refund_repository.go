package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const refundColumns = `
	id, provider_id, payment_id, status, amount, currency, reason, provider_data,
	created_at, updated_at`

type RefundRepository struct {
	db Executor
}

func NewRefundRepository(db Executor) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *domain.Refund) error {
	query := `INSERT INTO refunds (` + refundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	m := toRefundModel(refund)
	_, err := r.db.Exec(ctx, query,
		m.ID, m.ProviderID, m.PaymentID, m.Status, m.Amount, m.Currency, m.Reason,
		m.ProviderData, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	return scanRefund(r.db.QueryRow(ctx, query, id))
}

func (r *RefundRepository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE payment_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query refunds by payment: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Refund, error) {
		return scanRefund(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan refunds: %w", err)
	}
	return results, nil
}

func (r *RefundRepository) Update(ctx context.Context, refund *domain.Refund) error {
	query := `
		UPDATE refunds
		SET provider_id = $1, status = $2, provider_data = $3, updated_at = $4
		WHERE id = $5
	`

	m := toRefundModel(refund)
	tag, err := r.db.Exec(ctx, query, m.ProviderID, m.Status, m.ProviderData, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return application.ErrRefundNotFound
	}
	return nil
}

func scanRefund(row pgx.Row) (*domain.Refund, error) {
	var m RefundModel
	err := row.Scan(
		&m.ID, &m.ProviderID, &m.PaymentID, &m.Status, &m.Amount, &m.Currency, &m.Reason,
		&m.ProviderData, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to scan refund: %w", err)
	}
	return toDomainRefund(m), nil
}
