package rest

import (
	"encoding/json"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

type PaymentResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Provider           string            `json:"provider"`
	ProviderPaymentID  string            `json:"providerPaymentId"`
	Status             string            `json:"status"`
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	Description        string            `json:"description,omitempty"`
	CheckoutURL        string            `json:"checkoutUrl,omitempty"`
	RedirectURL        string            `json:"redirectUrl,omitempty"`
	InvoiceID          *uuid.UUID        `json:"invoiceId,omitempty"`
	RefundIDs          []uuid.UUID       `json:"refundIds,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	ProviderData       json.RawMessage   `json:"providerData,omitempty" swaggertype:"object"`
	Version            int               `json:"version"`
	WebhookProcessedAt *time.Time        `json:"webhookProcessedAt,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 p.ID,
		Provider:           p.Provider,
		ProviderPaymentID:  p.ProviderID,
		Status:             string(p.Status),
		Amount:             p.Amount,
		Currency:           p.Currency,
		Description:        p.Description,
		CheckoutURL:        p.CheckoutURL,
		RedirectURL:        p.RedirectURL,
		InvoiceID:          p.InvoiceID,
		RefundIDs:          p.RefundIDs,
		Metadata:           p.Metadata,
		ProviderData:       p.ProviderData,
		Version:            p.Version,
		WebhookProcessedAt: p.WebhookProcessedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func ToPaymentList(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

type LineItemResponse struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitAmount  int64  `json:"unitAmount"`
	TotalAmount int64  `json:"totalAmount"`
}

type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	Status        string             `json:"status"`
	Currency      string             `json:"currency"`
	Items         []LineItemResponse `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	TaxAmount     int64              `json:"taxAmount"`
	Amount        int64              `json:"amount"`
	DueDate       time.Time          `json:"dueDate"`
	PaidAt        *time.Time         `json:"paidAt,omitempty"`
	PaymentID     *uuid.UUID         `json:"paymentId,omitempty"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Version       int                `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, LineItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitAmount:  it.UnitAmount,
			TotalAmount: it.TotalAmount,
		})
	}
	return InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		Status:        string(inv.Status),
		Currency:      inv.Currency,
		Items:         items,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		PaymentID:     inv.PaymentID,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		Notes:         inv.Notes,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

type RefundResponse struct {
	ID               uuid.UUID       `json:"id"`
	PaymentID        uuid.UUID       `json:"paymentId"`
	ProviderRefundID string          `json:"providerRefundId,omitempty"`
	Status           string          `json:"status"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Reason           string          `json:"reason,omitempty"`
	ProviderData     json.RawMessage `json:"providerData,omitempty" swaggertype:"object"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func ToRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:               r.ID,
		PaymentID:        r.PaymentID,
		ProviderRefundID: r.ProviderID,
		Status:           string(r.Status),
		Amount:           r.Amount,
		Currency:         r.Currency,
		Reason:           string(r.Reason),
		ProviderData:     r.ProviderData,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func ToRefundList(refunds []*domain.Refund) []RefundResponse {
	out := make([]RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, ToRefundResponse(r))
	}
	return out
}
