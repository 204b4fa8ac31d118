package handlers

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type CreatePaymentRequest struct {
	Provider    string            `json:"provider" validate:"required" example:"mollie"`
	Amount      int64             `json:"amount" validate:"required,gt=0,lte=99999999999" example:"1050"`
	Currency    string            `json:"currency" validate:"required,len=3" example:"EUR"`
	Description string            `json:"description,omitempty" example:"Pro plan, March"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	RedirectURL string            `json:"redirectUrl,omitempty" validate:"omitempty,url" example:"https://shop.example.com/thanks"`
	InvoiceID   *uuid.UUID        `json:"invoiceId,omitempty"`
}

type UpdatePaymentRequest struct {
	Status      *string           `json:"status,omitempty" example:"succeeded"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Version     *int              `json:"version,omitempty" validate:"omitempty,gt=0" example:"3"`
}

type RefundRequest struct {
	Amount int64  `json:"amount,omitempty" validate:"omitempty,gt=0" example:"500"`
	Reason string `json:"reason,omitempty" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer other" example:"requested_by_customer"`
}

// ListPaymentsParams are the query filters for GET /payments.
type ListPaymentsParams struct {
	Provider  *string
	Status    *string
	InvoiceID *openapi_types.UUID
	Limit     *int
	Offset    *int
}

// CreatePayment
// @Summary Create a payment
// @Description Starts a payment with the chosen provider and stores it at version 1
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "Payment to create"
// @Success 201 {object} rest.APIResponse{data=rest.PaymentResponse}
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Failure 502 {object} rest.APIResponse
// @Router /billing/payments [post]
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.CreatePayment(r.Context(), services.CreatePaymentCommand{
		Provider:    req.Provider,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Metadata:    req.Metadata,
		RedirectURL: req.RedirectURL,
		InvoiceID:   req.InvoiceID,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToPaymentResponse(payment))
}

// GetPayment
// @Summary Get a payment
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID" format(uuid)
// @Success 200 {object} rest.APIResponse{data=rest.PaymentResponse}
// @Failure 404 {object} rest.APIResponse
// @Router /billing/payments/{id} [get]
func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.query.FindPayment(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// ListPayments
// @Summary List payments
// @Tags payments
// @Produce json
// @Param provider query string false "Provider key"
// @Param status query string false "Canonical status"
// @Param invoiceId query string false "Linked invoice" format(uuid)
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} rest.APIResponse{data=[]rest.PaymentResponse}
// @Failure 400 {object} rest.APIResponse
// @Router /billing/payments [get]
func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := bindListPayments(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payments, err := h.query.ListPayments(r.Context(), filter)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentList(payments))
}

func bindListPayments(r *http.Request) (application.PaymentFilter, error) {
	var params ListPaymentsParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"provider", &params.Provider},
		{"status", &params.Status},
		{"invoiceId", &params.InvoiceID},
		{"limit", &params.Limit},
		{"offset", &params.Offset},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return application.PaymentFilter{}, application.NewValidationError(err)
		}
	}

	var filter application.PaymentFilter
	if params.Provider != nil {
		filter.Provider = *params.Provider
	}
	if params.Status != nil {
		status, err := domain.ParsePaymentStatus(*params.Status)
		if err != nil {
			return filter, application.NewValidationError(err)
		}
		filter.Status = status
	}
	if params.InvoiceID != nil {
		id := *params.InvoiceID
		filter.InvoiceID = &id
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}
	if params.Offset != nil {
		if *params.Offset < 0 {
			return filter, application.NewValidationError(errors.New("offset must not be negative"))
		}
		filter.Offset = *params.Offset
	}
	return filter, nil
}

// UpdatePayment
// @Summary Edit a payment
// @Description Administrative edit. A version, when given, must match the stored one.
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID" format(uuid)
// @Param request body UpdatePaymentRequest true "Fields to change"
// @Success 200 {object} rest.APIResponse{data=rest.PaymentResponse}
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Failure 409 {object} rest.APIResponse
// @Router /billing/payments/{id} [patch]
func (h *Handlers) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req UpdatePaymentRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if req.Status == nil && req.Description == nil && req.Metadata == nil {
		rest.WriteError(w, application.NewValidationError(errors.New("nothing to update")), h.logger)
		return
	}

	edit := services.ManualEdit{
		PaymentID:   id,
		Description: req.Description,
		Metadata:    req.Metadata,
		Version:     req.Version,
	}
	if req.Status != nil {
		status, err := domain.ParsePaymentStatus(*req.Status)
		if err != nil {
			rest.WriteError(w, application.NewValidationError(err), h.logger)
			return
		}
		edit.Status = &status
	}

	payment, err := h.payments.UpdatePayment(r.Context(), edit)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// CancelPayment
// @Summary Cancel a payment
// @Description Only pending or processing payments can be canceled
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID" format(uuid)
// @Success 200 {object} rest.APIResponse{data=rest.PaymentResponse}
// @Failure 404 {object} rest.APIResponse
// @Failure 409 {object} rest.APIResponse
// @Failure 502 {object} rest.APIResponse
// @Router /billing/payments/{id}/cancel [post]
func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.CancelPayment(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// CreateRefund
// @Summary Refund a payment
// @Description Omitting the amount refunds whatever is still refundable
// @Tags refunds
// @Accept json
// @Produce json
// @Param id path string true "Payment ID" format(uuid)
// @Param request body RefundRequest false "Refund details"
// @Success 201 {object} rest.APIResponse{data=rest.RefundResponse}
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Failure 409 {object} rest.APIResponse
// @Failure 502 {object} rest.APIResponse
// @Router /billing/payments/{id}/refunds [post]
func (h *Handlers) CreateRefund(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req RefundRequest
	if err := h.decodeOptional(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	refund, err := h.refunds.Refund(r.Context(), services.RefundCommand{
		PaymentID: id,
		Amount:    req.Amount,
		Reason:    domain.RefundReason(req.Reason),
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToRefundResponse(refund))
}

// ListRefunds
// @Summary List refunds of a payment
// @Tags refunds
// @Produce json
// @Param id path string true "Payment ID" format(uuid)
// @Success 200 {object} rest.APIResponse{data=[]rest.RefundResponse}
// @Failure 404 {object} rest.APIResponse
// @Router /billing/payments/{id}/refunds [get]
func (h *Handlers) ListRefunds(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	refunds, err := h.query.ListRefunds(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToRefundList(refunds))
}
