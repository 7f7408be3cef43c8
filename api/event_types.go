package api

import (
	"net/http"

	"github.com/xraph/courier/event"
)

func (h *Handler) listEventTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.relay.Catalog().List())
}

func (h *Handler) getEventType(w http.ResponseWriter, r *http.Request) {
	def, ok := h.relay.Catalog().Get(event.Type(r.PathValue("type")))
	if !ok {
		writeError(w, http.StatusNotFound, "event type not found")
		return
	}

	writeJSON(w, http.StatusOK, def)
}
