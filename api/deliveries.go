package api

import (
	"net/http"

	"github.com/xraph/courier/delivery"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/id"
)

func (h *Handler) listDeliveries(w http.ResponseWriter, r *http.Request) {
	f := history.Filter{
		EventID:     queryParam(r, "event_id"),
		SuccessOnly: queryBool(r, "success"),
		Limit:       queryInt(r, "limit", 0),
	}

	if raw := queryParam(r, "subscription_id"); raw != "" {
		subID, err := id.ParseSubscriptionID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid subscription ID")
			return
		}
		f.SubscriptionID = subID
	}

	recs, err := h.relay.History(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*delivery.Record{}
	}

	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) clearDeliveries(w http.ResponseWriter, r *http.Request) {
	if err := h.relay.ClearHistory(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
