package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundSucceeded  RefundStatus = "succeeded"
	RefundFailed     RefundStatus = "failed"
	RefundCanceled   RefundStatus = "canceled"
)

type RefundReason string

const (
	ReasonDuplicate           RefundReason = "duplicate"
	ReasonFraudulent          RefundReason = "fraudulent"
	ReasonRequestedByCustomer RefundReason = "requested_by_customer"
	ReasonOther               RefundReason = "other"
)

type Refund struct {
	ID           uuid.UUID
	ProviderID   string
	PaymentID    uuid.UUID
	Status       RefundStatus
	Amount       int64
	Currency     string
	Reason       RefundReason
	ProviderData json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRefund checks the requested amount against what is still refundable.
// An amount of zero means "everything that is left".
func NewRefund(payment *Payment, amount int64, reason RefundReason, existing []*Refund) (*Refund, error) {
	if err := payment.EnsureRefundable(); err != nil {
		return nil, err
	}

	refundable := payment.Amount - RefundedTotal(existing)
	if amount == 0 {
		amount = refundable
	}
	if amount <= 0 || refundable <= 0 {
		return nil, NewRefundExceedsAmountError(amount, max(refundable, 0))
	}
	if amount > refundable {
		return nil, NewRefundExceedsAmountError(amount, refundable)
	}

	switch reason {
	case "", ReasonDuplicate, ReasonFraudulent, ReasonRequestedByCustomer, ReasonOther:
	default:
		return nil, NewInvalidStatusError(string(reason))
	}

	now := time.Now().UTC()
	return &Refund{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		Status:    RefundPending,
		Amount:    amount,
		Currency:  payment.Currency,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Counts reports whether the refund holds part of the payment amount.
func (r *Refund) Counts() bool {
	return r.Status != RefundFailed && r.Status != RefundCanceled
}

// RefundedTotal sums every refund that has not failed or been canceled.
func RefundedTotal(refunds []*Refund) int64 {
	var total int64
	for _, r := range refunds {
		if r.Counts() {
			total += r.Amount
		}
	}
	return total
}

// StatusAfterRefund is the payment status implied by the refunded total.
func StatusAfterRefund(paymentAmount, refunded int64) PaymentStatus {
	if refunded >= paymentAmount {
		return StatusRefunded
	}
	return StatusPartiallyRefunded
}

func (r *Refund) Clone() *Refund {
	if r == nil {
		return nil
	}
	c := *r
	c.ProviderData = slices.Clone(r.ProviderData)
	return &c
}
