package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so the sentinels below
// can be compared against errors built with a specific message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Domain validation errors
const (
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency      = "INVALID_CURRENCY"
	ErrCodeInvalidDescription   = "INVALID_DESCRIPTION"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
)

// Domain invariant errors
const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeRefundExceedsAmount  = "REFUND_EXCEEDS_AMOUNT"
	ErrCodeInvoiceAlreadyLinked = "INVOICE_ALREADY_LINKED"
)

var (
	ErrInvalidAmount        = &DomainError{Code: ErrCodeInvalidAmount, Message: "invalid amount"}
	ErrInvalidCurrency      = &DomainError{Code: ErrCodeInvalidCurrency, Message: "invalid currency"}
	ErrInvalidDescription   = &DomainError{Code: ErrCodeInvalidDescription, Message: "invalid description"}
	ErrMissingRequiredField = &DomainError{Code: ErrCodeMissingRequiredField, Message: "missing required field"}
	ErrInvalidStatus        = &DomainError{Code: ErrCodeInvalidStatus, Message: "invalid status"}
	ErrInvalidTransition    = &DomainError{Code: ErrCodeInvalidTransition, Message: "invalid transition"}
	ErrInvalidState         = &DomainError{Code: ErrCodeInvalidState, Message: "invalid state"}
	ErrRefundExceedsAmount  = &DomainError{Code: ErrCodeRefundExceedsAmount, Message: "refund exceeds amount"}
	ErrInvoiceAlreadyLinked = &DomainError{Code: ErrCodeInvoiceAlreadyLinked, Message: "invoice already linked"}
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d: must be a positive integer no greater than %d", amount, MaxAmount),
	}
}

func NewInvalidCurrencyError(currency string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCurrency,
		Message: fmt.Sprintf("invalid currency %q: must be a 3-letter ISO 4217 code", currency),
	}
}

func NewInvalidDescriptionError(length int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidDescription,
		Message: fmt.Sprintf("description is %d characters, maximum is %d", length, MaxDescriptionLength),
	}
}

func NewInvalidStatusError(status string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("unknown status %q", status),
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidInvoiceTransitionError(from, to InvoiceStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot move invoice from %s to %s", from, to),
	}
}

func NewInvalidStateError(current PaymentStatus, operation string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("cannot %s a payment in status %s", operation, current),
	}
}

func NewRefundExceedsAmountError(requested, refundable int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeRefundExceedsAmount,
		Message: fmt.Sprintf("refund of %d exceeds refundable amount %d", requested, refundable),
	}
}

func NewInvoiceAlreadyLinkedError(paymentID, invoiceID uuid.UUID) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvoiceAlreadyLinked,
		Message: fmt.Sprintf("payment %s is already linked to invoice %s", paymentID, invoiceID),
	}
}

func NewInvoicePaidByOtherError(invoiceID, paymentID uuid.UUID) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvoiceAlreadyLinked,
		Message: fmt.Sprintf("invoice %s is already paid by payment %s", invoiceID, paymentID),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsValidationError reports whether err describes malformed input rather
// than a broken business rule.
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	switch domainErr.Code {
	case ErrCodeInvalidAmount, ErrCodeInvalidCurrency, ErrCodeInvalidDescription,
		ErrCodeMissingRequiredField, ErrCodeInvalidStatus:
		return true
	}
	return false
}
