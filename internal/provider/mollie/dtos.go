package mollie

import "encoding/json"

type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type Link struct {
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

type PaymentLinks struct {
	Checkout *Link `json:"checkout,omitempty"`
}

type CreatePaymentRequest struct {
	Amount      Amount            `json:"amount"`
	Description string            `json:"description"`
	RedirectURL string            `json:"redirectUrl,omitempty"`
	WebhookURL  string            `json:"webhookUrl,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type PaymentResponse struct {
	ID             string          `json:"id"`
	Mode           string          `json:"mode"`
	Status         string          `json:"status"`
	Amount         Amount          `json:"amount"`
	AmountRefunded *Amount         `json:"amountRefunded,omitempty"`
	Description    string          `json:"description"`
	Links          PaymentLinks    `json:"_links"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

type CreateRefundRequest struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type RefundResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Amount    Amount `json:"amount"`
	PaymentID string `json:"paymentId"`
}
