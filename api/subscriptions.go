package api

import (
	"errors"
	"net/http"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/signature"
	"github.com/xraph/courier/subscription"
)

type createSubscriptionRequest struct {
	URL            string            `json:"url"`
	Description    string            `json:"description,omitempty"`
	Events         []event.Type      `json:"events,omitempty"`
	Addresses      []string          `json:"addresses,omitempty"`
	DisputeIDs     []any             `json:"dispute_ids,omitempty"`
	Secret         string            `json:"secret,omitempty"`
	GenerateSecret bool              `json:"generate_secret,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// createSubscriptionResponse echoes the secret once, at creation time.
type createSubscriptionResponse struct {
	*subscription.Subscription
	Secret string `json:"secret,omitempty"`
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, t := range req.Events {
		if !t.Known() {
			writeError(w, http.StatusBadRequest, "unknown event type: "+string(t))
			return
		}
	}

	secret := req.Secret
	if secret == "" && req.GenerateSecret {
		var err error
		if secret, err = signature.GenerateSecret(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	sub, err := h.relay.Register(subscription.Input{
		URL:         req.URL,
		Description: req.Description,
		EventTypes:  req.Events,
		Addresses:   req.Addresses,
		DisputeIDs:  req.DisputeIDs,
		Secret:      secret,
		Metadata:    req.Metadata,
	})
	if err != nil {
		var vErr *subscription.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createSubscriptionResponse{
		Subscription: sub,
		Secret:       secret,
	})
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.relay.Subscriptions())
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	subID, err := id.ParseSubscriptionID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription ID")
		return
	}

	sub, err := h.relay.Subscription(subID)
	if err != nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	h.mutateSubscription(w, r, h.relay.Unregister)
}

func (h *Handler) pauseSubscription(w http.ResponseWriter, r *http.Request) {
	h.mutateSubscription(w, r, h.relay.Pause)
}

func (h *Handler) resumeSubscription(w http.ResponseWriter, r *http.Request) {
	h.mutateSubscription(w, r, h.relay.Resume)
}

// mutateSubscription applies op to the subscription in the path and answers
// 204, or 404 when op reports the ID as unknown.
func (h *Handler) mutateSubscription(w http.ResponseWriter, r *http.Request, op func(id.ID) bool) {
	subID, err := id.ParseSubscriptionID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription ID")
		return
	}

	if !op(subID) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
