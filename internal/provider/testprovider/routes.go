package testprovider

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
)

type checkoutPage struct {
	PaymentID   string       `json:"paymentId"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	RedirectURL string       `json:"redirectUrl,omitempty"`
	Scenarios   []Scenario   `json:"scenarios"`
	Methods     []MethodInfo `json:"methods"`
}

func (p *Provider) OnConfig(rc *provider.RegistrationContext) {
	logger := rc.Logger.With("provider", Key)

	rc.Handle("GET /test/config", func(w http.ResponseWriter, r *http.Request) {
		rest.WriteJSON(w, http.StatusOK, p.Settings())
	})
	rc.Handle("GET /test/payment/{id}", p.handleCheckout(logger))
	rc.Handle("POST /test/process", p.handleProcess(logger))
	rc.Handle("GET /test/status/{id}", p.handleStatus(logger))
}

// handleCheckout
// @Summary Test checkout page
// @Description Returns what a checkout UI needs to let a developer pick a scenario
// @Tags test-provider
// @Produce json
// @Param id path string true "Test payment id"
// @Success 200 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Router /billing/test/payment/{id} [get]
func (p *Provider) handleCheckout(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := p.Session(r.Context(), r.PathValue("id"))
		if err != nil {
			rest.WriteError(w, err, logger)
			return
		}
		rest.WriteJSON(w, http.StatusOK, checkoutPage{
			PaymentID:   session.ID,
			Amount:      session.Amount,
			Currency:    session.Currency,
			Description: session.Description,
			Status:      session.Status,
			RedirectURL: session.RedirectURL,
			Scenarios:   p.scenarios,
			Methods:     Methods,
		})
	}
}

// handleProcess
// @Summary Complete a test checkout
// @Tags test-provider
// @Accept json
// @Produce json
// @Param request body ProcessRequest true "Scenario to play"
// @Success 200 {object} rest.APIResponse
// @Failure 400 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Router /billing/test/process [post]
func (p *Provider) handleProcess(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.WriteError(w, application.NewValidationError(err), logger)
			return
		}

		result, err := p.Process(r.Context(), req)
		if err != nil {
			rest.WriteError(w, err, logger)
			return
		}
		rest.WriteJSON(w, http.StatusOK, result)
	}
}

// handleStatus
// @Summary Test session status
// @Tags test-provider
// @Produce json
// @Param id path string true "Test payment id"
// @Success 200 {object} rest.APIResponse
// @Failure 404 {object} rest.APIResponse
// @Router /billing/test/status/{id} [get]
func (p *Provider) handleStatus(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := p.Status(r.PathValue("id"))
		if err != nil {
			rest.WriteError(w, err, logger)
			return
		}
		rest.WriteJSON(w, http.StatusOK, status)
	}
}
