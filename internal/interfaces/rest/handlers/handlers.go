package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const maxBodyBytes = 1 << 20

type PaymentService interface {
	CreatePayment(ctx context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error)
	CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, edit services.ManualEdit) (*domain.Payment, error)
}

type RefundService interface {
	Refund(ctx context.Context, cmd services.RefundCommand) (*domain.Refund, error)
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, cmd services.CreateInvoiceCommand) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, cmd services.UpdateInvoiceStatusCommand) (*domain.Invoice, error)
}

type QueryService interface {
	FindPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter application.PaymentFilter) ([]*domain.Payment, error)
	FindInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListRefunds(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error)
}

type WebhookService interface {
	HandleWebhook(ctx context.Context, providerKey string, r *http.Request)
}

type Handlers struct {
	payments PaymentService
	refunds  RefundService
	invoices InvoiceService
	query    QueryService
	webhooks WebhookService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandlers(
	payments PaymentService,
	refunds RefundService,
	invoices InvoiceService,
	query QueryService,
	webhooks WebhookService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		payments: payments,
		refunds:  refunds,
		invoices: invoices,
		query:    query,
		webhooks: webhooks,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes mounts the caller-facing API under basePath.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux, basePath string) {
	base := strings.TrimSuffix(basePath, "/")

	mux.HandleFunc("POST "+base+"/payments", h.CreatePayment)
	mux.HandleFunc("GET "+base+"/payments", h.ListPayments)
	mux.HandleFunc("GET "+base+"/payments/{id}", h.GetPayment)
	mux.HandleFunc("PATCH "+base+"/payments/{id}", h.UpdatePayment)
	mux.HandleFunc("POST "+base+"/payments/{id}/cancel", h.CancelPayment)
	mux.HandleFunc("POST "+base+"/payments/{id}/refunds", h.CreateRefund)
	mux.HandleFunc("GET "+base+"/payments/{id}/refunds", h.ListRefunds)

	mux.HandleFunc("POST "+base+"/invoices", h.CreateInvoice)
	mux.HandleFunc("GET "+base+"/invoices/{id}", h.GetInvoice)
	mux.HandleFunc("PATCH "+base+"/invoices/{id}/status", h.UpdateInvoiceStatus)

	mux.HandleFunc("POST "+base+"/webhooks/{provider}", h.ReceiveWebhook)

	mux.HandleFunc("GET /docs/doc.json", h.ServeDocs)
}

// decode reads a JSON body into dst and runs the struct validator over it.
func (h *Handlers) decode(r *http.Request, dst any) error {
	return h.decodeBody(r, dst, false)
}

// decodeOptional is decode for endpoints whose whole body may be omitted.
func (h *Handlers) decodeOptional(r *http.Request, dst any) error {
	return h.decodeBody(r, dst, true)
}

func (h *Handlers) decodeBody(r *http.Request, dst any, optional bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return application.NewValidationError(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if optional {
			return nil
		}
		return application.NewValidationError(errors.New("request body is required"))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return application.NewValidationError(err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return application.NewValidationError(err)
	}
	return nil
}

// pathID binds a uuid path segment the way generated OpenAPI servers do.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, application.NewValidationError(err)
	}
	return id, nil
}
