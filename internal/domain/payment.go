// Package domain holds the canonical payment, invoice and refund entities
// shared by every provider.
package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the provider-agnostic state of a payment.
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "pending"
	StatusProcessing        PaymentStatus = "processing"
	StatusSucceeded         PaymentStatus = "succeeded"
	StatusFailed            PaymentStatus = "failed"
	StatusCanceled          PaymentStatus = "canceled"
	StatusRefunded          PaymentStatus = "refunded"
	StatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

var paymentStatuses = []PaymentStatus{
	StatusPending, StatusProcessing, StatusSucceeded, StatusFailed,
	StatusCanceled, StatusRefunded, StatusPartiallyRefunded,
}

// ParsePaymentStatus rejects anything outside the canonical vocabulary.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !slices.Contains(paymentStatuses, status) {
		return "", NewInvalidStatusError(s)
	}
	return status, nil
}

// Origin tells the concurrency controller who is writing.
type Origin string

const (
	OriginWebhook Origin = "webhook"
	OriginManual  Origin = "manual"
)

type Payment struct {
	ID           uuid.UUID
	Provider     string
	ProviderID   string
	Status       PaymentStatus
	Amount       int64
	Currency     string
	Description  string
	CheckoutURL  string
	RedirectURL  string
	InvoiceID    *uuid.UUID
	RefundIDs    []uuid.UUID
	Metadata     map[string]string
	ProviderData json.RawMessage
	Version      int

	WebhookProcessedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPayment builds a pending payment at version 1. Provider fields are
// filled in later by the provider's InitPayment.
func NewPayment(provider string, money Money, description string, metadata map[string]string) (*Payment, error) {
	if provider == "" {
		return nil, NewMissingRequiredFieldError("provider")
	}
	if err := ValidateAmount(money.Amount); err != nil {
		return nil, err
	}
	currency, err := NormalizeCurrency(money.Currency)
	if err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Payment{
		ID:          uuid.New(),
		Provider:    provider,
		Status:      StatusPending,
		Amount:      money.Amount,
		Currency:    currency,
		Description: description,
		Metadata:    maps.Clone(metadata),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (p *Payment) Money() Money {
	return Money{Amount: p.Amount, Currency: p.Currency}
}

// TransitionTo moves the payment along the lifecycle graph. Re-applying the
// current status is accepted and leaves the status unchanged.
func (p *Payment) TransitionTo(target PaymentStatus) error {
	next, err := fire(p.Status, target)
	if err != nil {
		return err
	}
	p.Status = next
	return nil
}

// CanTransitionTo is TransitionTo without the side effect.
func (p *Payment) CanTransitionTo(target PaymentStatus) error {
	_, err := fire(p.Status, target)
	return err
}

// IsSettled is true once the money has moved, including after refunds.
func (p *Payment) IsSettled() bool {
	switch p.Status {
	case StatusSucceeded, StatusPartiallyRefunded, StatusRefunded:
		return true
	default:
		return false
	}
}

// EnsureCancelable guards the explicit cancel operation, which is narrower
// than the transition graph because re-canceling must be rejected.
func (p *Payment) EnsureCancelable() error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return NewInvalidStateError(p.Status, "cancel")
	}
	return nil
}

func (p *Payment) EnsureRefundable() error {
	if p.Status != StatusSucceeded && p.Status != StatusPartiallyRefunded {
		return NewInvalidStateError(p.Status, "refund")
	}
	return nil
}

func (p *Payment) AttachRefund(id uuid.UUID) {
	if !slices.Contains(p.RefundIDs, id) {
		p.RefundIDs = append(p.RefundIDs, id)
	}
}

// LinkInvoice sets the invoice reference. Linking a different invoice once
// one is set is refused.
func (p *Payment) LinkInvoice(invoiceID uuid.UUID) error {
	if p.InvoiceID != nil && *p.InvoiceID != invoiceID {
		return NewInvoiceAlreadyLinkedError(p.ID, *p.InvoiceID)
	}
	p.InvoiceID = &invoiceID
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.RefundIDs = slices.Clone(p.RefundIDs)
	c.Metadata = maps.Clone(p.Metadata)
	c.ProviderData = slices.Clone(p.ProviderData)
	if p.InvoiceID != nil {
		id := *p.InvoiceID
		c.InvoiceID = &id
	}
	if p.WebhookProcessedAt != nil {
		t := *p.WebhookProcessedAt
		c.WebhookProcessedAt = &t
	}
	return &c
}
