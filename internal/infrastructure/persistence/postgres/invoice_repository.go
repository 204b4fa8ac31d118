package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `
	id, number, status, currency, items, subtotal, tax_amount, amount, due_date,
	paid_at, payment_id, customer_name, customer_email, notes, version,
	created_at, updated_at`

type InvoiceRepository struct {
	db Executor
}

func NewInvoiceRepository(db Executor) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	m := toInvoiceModel(invoice)
	_, err := r.db.Exec(ctx, query,
		m.ID, m.Number, m.Status, m.Currency, m.Items, m.Subtotal, m.TaxAmount, m.Amount,
		m.DueDate, m.PaidAt, m.PaymentID, m.CustomerName, m.CustomerEmail, m.Notes,
		m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return application.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var m InvoiceModel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Number, &m.Status, &m.Currency, &m.Items, &m.Subtotal, &m.TaxAmount, &m.Amount,
		&m.DueDate, &m.PaidAt, &m.PaymentID, &m.CustomerName, &m.CustomerEmail, &m.Notes,
		&m.Version, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	return toDomainInvoice(m), nil
}

func (r *InvoiceRepository) UpdateIfVersion(ctx context.Context, invoice *domain.Invoice, expected int) error {
	query := `
		UPDATE invoices
		SET status = $1, items = $2, subtotal = $3, tax_amount = $4, amount = $5,
			due_date = $6, paid_at = $7, payment_id = $8, customer_name = $9,
			customer_email = $10, notes = $11, updated_at = $12, version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING version, updated_at
	`

	if err := invoice.Recalculate(); err != nil {
		return err
	}

	m := toInvoiceModel(invoice)
	err := r.db.QueryRow(ctx, query,
		m.Status, m.Items, m.Subtotal, m.TaxAmount, m.Amount,
		m.DueDate, m.PaidAt, m.PaymentID, m.CustomerName,
		m.CustomerEmail, m.Notes, time.Now().UTC(),
		m.ID, expected,
	).Scan(&invoice.Version, &invoice.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoice.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check invoice existence: %w", err)
			}
			if !exists {
				return application.ErrInvoiceNotFound
			}
			return application.ErrVersionConflict
		}
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}
