package postgres

import (
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

// toDomainPayment maps a payments row to the domain entity.
func toDomainPayment(m PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:                 m.ID,
		Provider:           m.Provider,
		ProviderID:         m.ProviderID,
		Status:             domain.PaymentStatus(m.Status),
		Amount:             m.Amount,
		Currency:           m.Currency,
		Description:        m.Description,
		CheckoutURL:        m.CheckoutURL,
		RedirectURL:        m.RedirectURL,
		InvoiceID:          m.InvoiceID,
		RefundIDs:          m.RefundIDs,
		Metadata:           m.Metadata,
		ProviderData:       m.ProviderData,
		Version:            m.Version,
		WebhookProcessedAt: m.WebhookProcessedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// toPaymentModel maps the domain entity to a payments row. Empty
// collections are stored as empty JSON rather than NULL.
func toPaymentModel(p *domain.Payment) PaymentModel {
	refundIDs := p.RefundIDs
	if refundIDs == nil {
		refundIDs = []uuid.UUID{}
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return PaymentModel{
		ID:                 p.ID,
		Provider:           p.Provider,
		ProviderID:         p.ProviderID,
		Status:             string(p.Status),
		Amount:             p.Amount,
		Currency:           p.Currency,
		Description:        p.Description,
		CheckoutURL:        p.CheckoutURL,
		RedirectURL:        p.RedirectURL,
		InvoiceID:          p.InvoiceID,
		RefundIDs:          refundIDs,
		Metadata:           metadata,
		ProviderData:       p.ProviderData,
		Version:            p.Version,
		WebhookProcessedAt: p.WebhookProcessedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toDomainInvoice(m InvoiceModel) *domain.Invoice {
	items := make([]domain.LineItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.LineItem(it))
	}
	return &domain.Invoice{
		ID:            m.ID,
		Number:        m.Number,
		Status:        domain.InvoiceStatus(m.Status),
		Currency:      m.Currency,
		Items:         items,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		Amount:        m.Amount,
		DueDate:       m.DueDate,
		PaidAt:        m.PaidAt,
		PaymentID:     m.PaymentID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		Notes:         m.Notes,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toInvoiceModel(inv *domain.Invoice) InvoiceModel {
	items := make([]LineItemModel, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, LineItemModel(it))
	}
	return InvoiceModel{
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

func toDomainRefund(m RefundModel) *domain.Refund {
	r := &domain.Refund{
		ID:           m.ID,
		PaymentID:    m.PaymentID,
		Status:       domain.RefundStatus(m.Status),
		Amount:       m.Amount,
		Currency:     m.Currency,
		Reason:       domain.RefundReason(m.Reason),
		ProviderData: m.ProviderData,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ProviderID != nil {
		r.ProviderID = *m.ProviderID
	}
	return r
}

func toRefundModel(r *domain.Refund) RefundModel {
	m := RefundModel{
		ID:           r.ID,
		PaymentID:    r.PaymentID,
		Status:       string(r.Status),
		Amount:       r.Amount,
		Currency:     r.Currency,
		Reason:       string(r.Reason),
		ProviderData: r.ProviderData,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ProviderID != "" {
		id := r.ProviderID
		m.ProviderID = &id
	}
	return m
}
