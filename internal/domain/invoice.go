package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "draft"
	InvoiceOpen          InvoiceStatus = "open"
	InvoicePaid          InvoiceStatus = "paid"
	InvoiceVoid          InvoiceStatus = "void"
	InvoiceUncollectible InvoiceStatus = "uncollectible"
)

// DefaultDueIn is applied when an invoice is created without a due date.
const DefaultDueIn = 30 * 24 * time.Hour

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(s)
	switch status {
	case InvoiceDraft, InvoiceOpen, InvoicePaid, InvoiceVoid, InvoiceUncollectible:
		return status, nil
	}
	return "", NewInvalidStatusError(s)
}

type LineItem struct {
	Description string
	Quantity    int64
	UnitAmount  int64
	TotalAmount int64
}

type Invoice struct {
	ID            uuid.UUID
	Number        string
	Status        InvoiceStatus
	Currency      string
	Items         []LineItem
	Subtotal      int64
	TaxAmount     int64
	Amount        int64
	DueDate       time.Time
	PaidAt        *time.Time
	PaymentID     *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Notes         string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type InvoiceParams struct {
	Number        string
	Status        InvoiceStatus
	Currency      string
	Items         []LineItem
	TaxAmount     int64
	DueDate       *time.Time
	PaymentID     *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Notes         string
}

func NewInvoice(params InvoiceParams, now time.Time) (*Invoice, error) {
	currency, err := NormalizeCurrency(params.Currency)
	if err != nil {
		return nil, err
	}
	if len(params.Items) == 0 {
		return nil, NewMissingRequiredFieldError("items")
	}
	if params.TaxAmount < 0 {
		return nil, NewInvalidAmountError(params.TaxAmount)
	}

	status := params.Status
	if status == "" {
		status = InvoiceDraft
	}
	if _, err := ParseInvoiceStatus(string(status)); err != nil {
		return nil, err
	}

	number := params.Number
	if number == "" {
		number = fmt.Sprintf("INV-%d", now.UnixMilli())
	}

	dueDate := now.Add(DefaultDueIn)
	if params.DueDate != nil {
		dueDate = *params.DueDate
	}

	inv := &Invoice{
		ID:            uuid.New(),
		Number:        number,
		Status:        status,
		Currency:      currency,
		Items:         slices.Clone(params.Items),
		TaxAmount:     params.TaxAmount,
		DueDate:       dueDate,
		PaymentID:     params.PaymentID,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		Notes:         params.Notes,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}
	if inv.Status == InvoicePaid {
		inv.PaidAt = &now
	}
	return inv, nil
}

// Recalculate derives line totals, subtotal and amount from the items. Every
// figure, the grand total included, stays within MaxAmount.
func (inv *Invoice) Recalculate() error {
	if inv.TaxAmount < 0 || inv.TaxAmount > MaxAmount {
		return NewInvalidAmountError(inv.TaxAmount)
	}

	var subtotal int64
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.Quantity <= 0 {
			return &DomainError{
				Code:    ErrCodeInvalidAmount,
				Message: fmt.Sprintf("line item %d: quantity must be positive", i),
			}
		}
		if item.UnitAmount < 0 || item.UnitAmount > MaxAmount {
			return NewInvalidAmountError(item.UnitAmount)
		}
		if item.UnitAmount > 0 && item.Quantity > MaxAmount/item.UnitAmount {
			return newInvoiceTotalError(fmt.Sprintf("line item %d", i))
		}
		item.TotalAmount = item.Quantity * item.UnitAmount
		if subtotal > MaxAmount-item.TotalAmount {
			return newInvoiceTotalError("subtotal")
		}
		subtotal += item.TotalAmount
	}
	if subtotal > MaxAmount-inv.TaxAmount {
		return newInvoiceTotalError("amount")
	}
	inv.Subtotal = subtotal
	inv.Amount = subtotal + inv.TaxAmount
	return nil
}

func newInvoiceTotalError(what string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invoice %s exceeds %d", what, MaxAmount),
	}
}

func (inv *Invoice) canMoveTo(target InvoiceStatus) error {
	if inv.Status == target {
		return nil
	}
	switch inv.Status {
	case InvoiceDraft:
		return inv.allow(target, InvoiceOpen, InvoicePaid, InvoiceVoid)
	case InvoiceOpen:
		return inv.allow(target, InvoicePaid, InvoiceVoid, InvoiceUncollectible)
	case InvoiceUncollectible:
		return inv.allow(target, InvoicePaid, InvoiceVoid)
	}
	return NewInvalidInvoiceTransitionError(inv.Status, target)
}

func (inv *Invoice) allow(target InvoiceStatus, allowed ...InvoiceStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidInvoiceTransitionError(inv.Status, target)
}

// SetStatus changes the status and stamps PaidAt the first time it becomes paid.
func (inv *Invoice) SetStatus(target InvoiceStatus, now time.Time) error {
	if _, err := ParseInvoiceStatus(string(target)); err != nil {
		return err
	}
	if err := inv.canMoveTo(target); err != nil {
		return err
	}
	inv.Status = target
	if target == InvoicePaid && inv.PaidAt == nil {
		inv.PaidAt = &now
	}
	return nil
}

// MarkPaid records a settled payment. It reports false when the invoice was
// already paid by that payment and refuses to move a paid invoice onto a
// different payment.
func (inv *Invoice) MarkPaid(paymentID uuid.UUID, now time.Time) (bool, error) {
	if inv.Status == InvoicePaid && inv.PaymentID != nil {
		if *inv.PaymentID == paymentID {
			return false, nil
		}
		return false, NewInvoicePaidByOtherError(inv.ID, *inv.PaymentID)
	}
	if err := inv.SetStatus(InvoicePaid, now); err != nil {
		return false, err
	}
	inv.PaymentID = &paymentID
	return true, nil
}

func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Items = slices.Clone(inv.Items)
	if inv.PaidAt != nil {
		t := *inv.PaidAt
		c.PaidAt = &t
	}
	if inv.PaymentID != nil {
		id := *inv.PaymentID
		c.PaymentID = &id
	}
	return &c
}
