package testprovider

import (
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

// Outcome is the simulated provider-native result of a checkout.
type Outcome string

const (
	OutcomePaid      Outcome = "paid"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeExpired   Outcome = "expired"
	OutcomePending   Outcome = "pending"
)

var statusMap = provider.StatusMap{
	string(OutcomePaid):      domain.StatusSucceeded,
	string(OutcomeFailed):    domain.StatusFailed,
	string(OutcomeCancelled): domain.StatusCanceled,
	string(OutcomeExpired):   domain.StatusCanceled,
	string(OutcomePending):   domain.StatusPending,
}

// MapOutcome translates a scenario outcome to the canonical status.
func MapOutcome(o Outcome) domain.PaymentStatus {
	return statusMap.Map(string(o))
}

type Scenario struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Outcome     Outcome       `json:"outcome"`
	Delay       time.Duration `json:"delay"`
}

var DefaultScenarios = []Scenario{
	{ID: "instant-success", Name: "Instant Success", Description: "Payment succeeds immediately", Outcome: OutcomePaid, Delay: 0},
	{ID: "delayed-success", Name: "Delayed Success", Description: "Payment succeeds after a delay", Outcome: OutcomePaid, Delay: 3 * time.Second},
	{ID: "cancelled-payment", Name: "Cancelled Payment", Description: "User cancels the payment", Outcome: OutcomeCancelled, Delay: time.Second},
	{ID: "declined-payment", Name: "Declined Payment", Description: "Payment is declined by the provider", Outcome: OutcomeFailed, Delay: 2 * time.Second},
	{ID: "expired-payment", Name: "Expired Payment", Description: "Payment expires before completion", Outcome: OutcomeExpired, Delay: 5 * time.Second},
	{ID: "pending-payment", Name: "Pending Payment", Description: "Payment remains in pending state", Outcome: OutcomePending, Delay: 1500 * time.Millisecond},
}

type Method string

const (
	MethodIDEAL        Method = "ideal"
	MethodCreditCard   Method = "creditcard"
	MethodPayPal       Method = "paypal"
	MethodApplePay     Method = "applepay"
	MethodBankTransfer Method = "banktransfer"
)

type MethodInfo struct {
	ID   Method `json:"id"`
	Name string `json:"name"`
}

var Methods = []MethodInfo{
	{ID: MethodIDEAL, Name: "iDEAL"},
	{ID: MethodCreditCard, Name: "Credit Card"},
	{ID: MethodPayPal, Name: "PayPal"},
	{ID: MethodApplePay, Name: "Apple Pay"},
	{ID: MethodBankTransfer, Name: "Bank Transfer"},
}

func methodName(m Method) string {
	for _, info := range Methods {
		if info.ID == m {
			return info.Name
		}
	}
	return ""
}
