package handlers

import (
	"net/http"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
	"github.com/google/uuid"
)

type LineItemRequest struct {
	Description string `json:"description" validate:"required" example:"Pro plan"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0,lte=99999999999" example:"1"`
	UnitAmount  int64  `json:"unitAmount" validate:"gte=0,lte=99999999999" example:"1050"`
}

type CreateInvoiceRequest struct {
	Number        string            `json:"number,omitempty" example:"INV-2026-0042"`
	Status        string            `json:"status,omitempty" validate:"omitempty,oneof=draft open paid void uncollectible" example:"open"`
	Currency      string            `json:"currency" validate:"required,len=3" example:"EUR"`
	Items         []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxAmount     int64             `json:"taxAmount,omitempty" validate:"gte=0,lte=99999999999"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
	PaymentID     *uuid.UUID        `json:"paymentId,omitempty"`
	CustomerName  string            `json:"customerName,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Notes         string            `json:"notes,omitempty"`
}

type UpdateInvoiceStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=draft open paid void uncollectible" example:"paid"`
	Version int    `json:"version,omitempty" validate:"omitempty,gt=0" example:"2"`
}

// CreateInvoice
// @Summary Create an invoice
// @Description Totals are computed from the line items. A linked payment gets the invoice id back.
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice to create"
// @Success 201 {object} rest.APIResponse{data=rest.InvoiceResponse}
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Failure 409 {object} rest.APIResponse
// @Router /billing/invoices [post]
func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitAmount:  it.UnitAmount,
		})
	}

	invoice, err := h.invoices.CreateInvoice(r.Context(), services.CreateInvoiceCommand{
		Number:        req.Number,
		Status:        domain.InvoiceStatus(req.Status),
		Currency:      req.Currency,
		Items:         items,
		TaxAmount:     req.TaxAmount,
		DueDate:       req.DueDate,
		PaymentID:     req.PaymentID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToInvoiceResponse(invoice))
}

// GetInvoice
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Success 200 {object} rest.APIResponse{data=rest.InvoiceResponse}
// @Failure 404 {object} rest.APIResponse
// @Router /billing/invoices/{id} [get]
func (h *Handlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	invoice, err := h.query.FindInvoice(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToInvoiceResponse(invoice))
}

// UpdateInvoiceStatus
// @Summary Change an invoice status
// @Description Marking an invoice paid also moves its linked payment to succeeded
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID" format(uuid)
// @Param request body UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} rest.APIResponse{data=rest.InvoiceResponse}
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Failure 409 {object} rest.APIResponse
// @Router /billing/invoices/{id}/status [patch]
func (h *Handlers) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	invoice, err := h.invoices.UpdateStatus(r.Context(), services.UpdateInvoiceStatusCommand{
		InvoiceID: id,
		Status:    domain.InvoiceStatus(req.Status),
		Version:   req.Version,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToInvoiceResponse(invoice))
}
