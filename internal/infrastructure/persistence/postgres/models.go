package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentModel mirrors a row of the payments table. JSONB columns are
// encoded and decoded by pgx through encoding/json.
type PaymentModel struct {
	ID                 uuid.UUID
	Provider           string
	ProviderID         string
	Status             string
	Amount             int64
	Currency           string
	Description        string
	CheckoutURL        string
	RedirectURL        string
	InvoiceID          *uuid.UUID
	RefundIDs          []uuid.UUID
	Metadata           map[string]string
	ProviderData       json.RawMessage
	Version            int
	WebhookProcessedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type InvoiceModel struct {
	ID            uuid.UUID
	Number        string
	Status        string
	Currency      string
	Items         []LineItemModel
	Subtotal      int64
	TaxAmount     int64
	Amount        int64
	DueDate       time.Time
	PaidAt        *time.Time
	PaymentID     *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Notes         string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type LineItemModel struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"`
	TotalAmount int64  `json:"total_amount"`
}

type RefundModel struct {
	ID           uuid.UUID
	ProviderID   *string
	PaymentID    uuid.UUID
	Status       string
	Amount       int64
	Currency     string
	Reason       string
	ProviderData json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
