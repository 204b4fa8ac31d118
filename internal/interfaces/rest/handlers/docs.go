package handlers

import (
	"net/http"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest"
	"github.com/swaggo/swag"
)

// ServeDocs writes the registered swagger document.
func (h *Handlers) ServeDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
