// Package api provides the admin HTTP API for a Courier relay.
//
// Routes are relative; mount the handler under a prefix (default: /webhooks)
// with Mount or http.StripPrefix.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/xraph/courier"
)

// DefaultPrefix is the mount point used by the courierd daemon.
const DefaultPrefix = "/webhooks"

// Handler is the root HTTP handler for the Courier admin API.
type Handler struct {
	relay  *courier.Relay
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler creates a new admin API handler.
func NewHandler(r *courier.Relay, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		relay:  r,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// Mount registers h on mux under prefix.
func (h *Handler) Mount(mux *http.ServeMux, prefix string) {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		mux.Handle("/", h)
		return
	}
	mux.Handle(prefix+"/", http.StripPrefix(prefix, h))
}

func (h *Handler) registerRoutes() {
	// Subscriptions
	h.mux.HandleFunc("POST /subscriptions", h.createSubscription)
	h.mux.HandleFunc("GET /subscriptions", h.listSubscriptions)
	h.mux.HandleFunc("GET /subscriptions/{id}", h.getSubscription)
	h.mux.HandleFunc("DELETE /subscriptions/{id}", h.deleteSubscription)
	h.mux.HandleFunc("PATCH /subscriptions/{id}/pause", h.pauseSubscription)
	h.mux.HandleFunc("PATCH /subscriptions/{id}/resume", h.resumeSubscription)

	// Events
	h.mux.HandleFunc("POST /events", h.dispatchEvent)

	// Deliveries
	h.mux.HandleFunc("GET /deliveries", h.listDeliveries)
	h.mux.HandleFunc("DELETE /deliveries", h.clearDeliveries)

	// Event types
	h.mux.HandleFunc("GET /event-types", h.listEventTypes)
	h.mux.HandleFunc("GET /event-types/{type}", h.getEventType)

	// Stats
	h.mux.HandleFunc("GET /stats", h.getStats)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain(h.mux).ServeHTTP(w, r)
}
