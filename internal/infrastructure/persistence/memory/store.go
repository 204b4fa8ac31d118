package memory

import "github.com/DanielPopoola/billing-reconciler/internal/application"

// NewStore returns empty in-memory repositories.
func NewStore() application.Store {
	return application.Store{
		Payments: NewPaymentRepository(),
		Invoices: NewInvoiceRepository(),
		Refunds:  NewRefundRepository(),
	}
}
