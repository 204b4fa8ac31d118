package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
)

var timeoutBody = func() string {
	body, _ := json.Marshal(rest.APIResponse{
		Success: false,
		Error:   &rest.APIError{Code: application.ErrCodeTimeout, Message: "request timed out"},
	})
	return string(body)
}()

// Timeout bounds every request except those whose path starts with one of
// skipPrefixes.
func Timeout(timeout time.Duration, skipPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, timeoutBody)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bounded.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
