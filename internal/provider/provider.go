// Package provider defines the contract payment providers implement and the
// registry the rest of the system resolves them through.
package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
)

// Provider is the only mandatory part of the contract. InitPayment fills in
// ProviderID, ProviderData and optionally CheckoutURL/RedirectURL/Status.
type Provider interface {
	Key() string
	InitPayment(ctx context.Context, payment *domain.Payment) error
}

// Initializer runs once at startup, before any route is served.
type Initializer interface {
	OnInit(ctx context.Context, deps Dependencies) error
}

// RouteRegistrar lets a provider mount its own HTTP routes.
type RouteRegistrar interface {
	OnConfig(rc *RegistrationContext)
}

// WebhookParser authenticates an inbound webhook and extracts the payment
// notification it carries. A nil notification with a nil error means the
// event is valid but irrelevant.
type WebhookParser interface {
	ParseWebhook(ctx context.Context, r *http.Request) (*Notification, error)
}

type Canceler interface {
	CancelPayment(ctx context.Context, payment *domain.Payment) (json.RawMessage, error)
}

type RefundResult struct {
	ProviderID   string
	Status       domain.RefundStatus
	ProviderData json.RawMessage
}

type Refunder interface {
	RefundPayment(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*RefundResult, error)
}

// Notification is a provider event translated to the canonical vocabulary.
type Notification struct {
	Provider          string
	ProviderPaymentID string
	NativeStatus      string
	Status            domain.PaymentStatus
	EventID           string
	Payload           json.RawMessage
}

// Reconciler applies a notification through the concurrency controller.
type Reconciler interface {
	Reconcile(ctx context.Context, n Notification) (bool, error)
}

// Scheduler runs a job once after delay. Scheduled jobs cannot be withdrawn.
type Scheduler interface {
	Schedule(delay time.Duration, name string, job func(ctx context.Context))
}

// Dependencies is handed to every Initializer.
type Dependencies struct {
	Logger     *slog.Logger
	Payments   application.PaymentRepository
	Reconciler Reconciler
	Scheduler  Scheduler
	PublicURL  string
	Production bool
}

// RegistrationContext scopes provider routes under the billing base path.
type RegistrationContext struct {
	Mux      *http.ServeMux
	BasePath string
	Logger   *slog.Logger
}

// Handle mounts handler at pattern, which may carry a method prefix such as
// "POST /test/process".
func (rc *RegistrationContext) Handle(pattern string, handler http.HandlerFunc) {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		method, path = "", pattern
	}
	full := strings.TrimSuffix(rc.BasePath, "/") + path
	if method != "" {
		full = method + " " + full
	}
	rc.Mux.HandleFunc(full, handler)
	rc.Logger.Debug("provider route registered", "pattern", full)
}

// StatusMap translates a provider's native vocabulary. Unknown values fall
// back to processing, never to succeeded.
type StatusMap map[string]domain.PaymentStatus

func (m StatusMap) Map(native string) domain.PaymentStatus {
	if status, ok := m[strings.ToLower(native)]; ok {
		return status
	}
	return domain.StatusProcessing
}

// ValidatePayment is the shared input check every InitPayment starts with.
func ValidatePayment(payment *domain.Payment) error {
	if payment == nil {
		return application.NewValidationError(domain.NewMissingRequiredFieldError("payment"))
	}
	if err := domain.ValidateAmount(payment.Amount); err != nil {
		return application.NewValidationError(err)
	}
	currency, err := domain.NormalizeCurrency(payment.Currency)
	if err != nil {
		return application.NewValidationError(err)
	}
	payment.Currency = currency
	if err := domain.ValidateDescription(payment.Description); err != nil {
		return application.NewValidationError(err)
	}
	return nil
}
