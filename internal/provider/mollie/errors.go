package mollie

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is Mollie's problem+json error body.
type Error struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mollie error [%s]: %s (field: %s, status: %d)", e.Title, e.Detail, e.Field, e.Status)
	}
	return fmt.Sprintf("mollie error [%s]: %s (status: %d)", e.Title, e.Detail, e.Status)
}

func (e *Error) IsRetryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

func IsMollieError(err error) (*Error, bool) {
	var mollieErr *Error
	ok := errors.As(err, &mollieErr)
	return mollieErr, ok
}

func IsNotFound(err error) bool {
	mollieErr, ok := IsMollieError(err)
	return ok && mollieErr.Status == http.StatusNotFound
}
