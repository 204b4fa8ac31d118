package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
)

// Classify wraps any error coming out of a service into a ServiceError so
// callers always see one of the documented kinds.
func Classify(err error) *ServiceError {
	if err == nil {
		return nil
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr
	}

	switch {
	case domain.IsValidationError(err):
		return NewValidationError(err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrRefundExceedsAmount),
		errors.Is(err, domain.ErrInvoiceAlreadyLinked):
		return NewDomainInvariantError(err)
	case errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, ErrRefundNotFound):
		return NewNotFoundError(err)
	case errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrDuplicateProviderID),
		errors.Is(err, ErrDuplicateInvoiceNumber):
		return &ServiceError{
			Code:       ErrCodeConcurrencyConflict,
			Message:    "conflicting write",
			HTTPStatus: http.StatusConflict,
			Err:        err,
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ServiceError{
			Code:       ErrCodeTimeout,
			Message:    "request timed out",
			HTTPStatus: http.StatusRequestTimeout,
			Err:        err,
		}
	}

	return NewInternalError(err)
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return Classify(err).HTTPStatus
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if err == nil {
		return ""
	}
	return Classify(err).Code
}
