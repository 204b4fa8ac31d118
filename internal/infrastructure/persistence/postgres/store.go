package postgres

import "github.com/DanielPopoola/billing-reconciler/internal/application"

// NewStore wires the three repositories onto one pool.
func NewStore(db *DB) application.Store {
	return application.Store{
		Payments: NewPaymentRepository(db.Pool),
		Invoices: NewInvoiceRepository(db.Pool),
		Refunds:  NewRefundRepository(db.Pool),
	}
}
