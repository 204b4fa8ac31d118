package services

import (
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

type CreatePaymentCommand struct {
	Provider    string
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
	RedirectURL string
	InvoiceID   *uuid.UUID
}

type RefundCommand struct {
	PaymentID uuid.UUID
	// Amount of zero refunds whatever is left.
	Amount int64
	Reason domain.RefundReason
}

type CreateInvoiceCommand struct {
	Number        string
	Status        domain.InvoiceStatus
	Currency      string
	Items         []domain.LineItem
	TaxAmount     int64
	DueDate       *time.Time
	PaymentID     *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Notes         string
}

type UpdateInvoiceStatusCommand struct {
	InvoiceID uuid.UUID
	Status    domain.InvoiceStatus
	// Version of zero means the currently stored version.
	Version int
}
