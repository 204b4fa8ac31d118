package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is what caller-facing operations return. Code is the
// machine-readable kind.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeProvider            = "PROVIDER_ERROR"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeWebhookVerification = "WEBHOOK_VERIFICATION_FAILED"
	ErrCodeDomainInvariant     = "DOMAIN_INVARIANT_VIOLATION"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

func NewValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    "invalid request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewUnknownProviderError(key string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    fmt.Sprintf("unknown payment provider %q", key),
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewProviderError(provider string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProvider,
		Message:    fmt.Sprintf("payment provider %s failed", provider),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewUnsupportedOperationError(provider, operation string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProvider,
		Message:    fmt.Sprintf("payment provider %s does not support %s", provider, operation),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func NewConcurrencyConflictError(entity string, id fmt.Stringer) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeConcurrencyConflict,
		Message:    fmt.Sprintf("%s %s was modified concurrently", entity, id),
		HTTPStatus: http.StatusConflict,
		Err:        ErrVersionConflict,
	}
}

func NewWebhookVerificationError(provider string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeWebhookVerification,
		Message:    fmt.Sprintf("webhook from %s failed verification", provider),
		HTTPStatus: http.StatusOK,
		Err:        err,
	}
}

func NewDomainInvariantError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeDomainInvariant,
		Message:    "operation violates a payment invariant",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewNotFoundError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// IsCode reports whether err is a ServiceError of the given kind.
func IsCode(err error, code string) bool {
	svcErr, ok := IsServiceError(err)
	return ok && svcErr.Code == code
}
