package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
)

type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(status int) {
	w.started = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500 envelope. A panic after the
// response has started is only logged, and http.ErrAbortHandler is passed
// through to the server.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &startedWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log := logger.With("method", r.Method, "path", r.URL.Path)
				log.Error("panic recovered",
					"panic", rec,
					"response_started", sw.started,
					"stack", string(debug.Stack()),
				)
				if sw.started {
					return
				}

				w.Header().Set("Connection", "close")
				err := application.NewInternalError(fmt.Errorf("panic: %v", rec))
				rest.WriteError(w, err, log)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
