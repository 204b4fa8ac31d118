package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, provider, provider_id, status, amount, currency, description,
	checkout_url, redirect_url, invoice_id, refund_ids, metadata, provider_data,
	version, webhook_processed_at, created_at, updated_at`

type PaymentRepository struct {
	db Executor
}

func NewPaymentRepository(db Executor) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	p := toPaymentModel(payment)
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Provider,
		p.ProviderID,
		p.Status,
		p.Amount,
		p.Currency,
		p.Description,
		p.CheckoutURL,
		p.RedirectURL,
		p.InvoiceID,
		p.RefundIDs,
		p.Metadata,
		p.ProviderData,
		p.Version,
		p.WebhookProcessedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) && uniqueConstraint(err) == "idx_payments_provider_id" {
			return application.ErrDuplicateProviderID
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) FindByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, providerID))
}

func (r *PaymentRepository) List(ctx context.Context, filter application.PaymentFilter) ([]*domain.Payment, error) {
	var (
		where []string
		args  []any
	)
	if filter.Provider != "" {
		args = append(args, filter.Provider)
		where = append(where, fmt.Sprintf("provider = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		where = append(where, fmt.Sprintf("invoice_id = $%d", len(args)))
	}
	if filter.HasInvoice {
		where = append(where, "invoice_id IS NOT NULL")
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return results, nil
}

// UpdateIfVersion writes every mutable column only when the stored version
// still equals expected, and bumps it by one in the same statement.
func (r *PaymentRepository) UpdateIfVersion(ctx context.Context, payment *domain.Payment, expected int) error {
	query := `
		UPDATE payments
		SET status = $1, description = $2, checkout_url = $3, redirect_url = $4,
			invoice_id = $5, refund_ids = $6, metadata = $7, provider_data = $8,
			webhook_processed_at = $9, updated_at = $10, version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING version, updated_at
	`

	now := time.Now().UTC()
	p := toPaymentModel(payment)
	err := r.db.QueryRow(ctx, query,
		p.Status,
		p.Description,
		p.CheckoutURL,
		p.RedirectURL,
		p.InvoiceID,
		p.RefundIDs,
		p.Metadata,
		p.ProviderData,
		p.WebhookProcessedAt,
		now,
		p.ID,
		expected,
	).Scan(&payment.Version, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, payment.ID)
		}
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// missOrConflict tells a stale version apart from a missing row after a
// conditional update touched nothing.
func (r *PaymentRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check payment existence: %w", err)
	}
	if !exists {
		return application.ErrPaymentNotFound
	}
	return application.ErrVersionConflict
}

// scanPayment converts a database row into a domain Payment.
// Returns ErrPaymentNotFound if the row doesn't exist.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.Provider, &m.ProviderID, &m.Status, &m.Amount, &m.Currency, &m.Description,
		&m.CheckoutURL, &m.RedirectURL, &m.InvoiceID, &m.RefundIDs, &m.Metadata, &m.ProviderData,
		&m.Version, &m.WebhookProcessedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainPayment(m), nil
}
