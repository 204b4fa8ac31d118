package handlers

import (
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
)

type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}

// ReceiveWebhook
// @Summary Provider webhook
// @Description Always acknowledged with 200 so providers do not retry. Outcomes are only logged.
// @Tags webhooks
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param provider path string true "Provider key" example(stripe)
// @Success 200 {object} WebhookAck
// @Router /billing/webhooks/{provider} [post]
func (h *Handlers) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	h.webhooks.HandleWebhook(r.Context(), r.PathValue("provider"), r)
	rest.WriteRaw(w, http.StatusOK, WebhookAck{Received: true})
}
