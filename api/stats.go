package api

import (
	"net/http"

	"github.com/xraph/courier/history"
)

type statsResponse struct {
	Subscriptions       int `json:"subscriptions"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	HistoryEntries      int `json:"history_entries"`
	Delivered           int `json:"delivered"`
	Failed              int `json:"failed"`
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var resp statsResponse
	for _, sub := range h.relay.Subscriptions() {
		resp.Subscriptions++
		if sub.Active {
			resp.ActiveSubscriptions++
		}
	}

	recs, err := h.relay.History(ctx, history.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.HistoryEntries = len(recs)
	for _, rec := range recs {
		if rec.Success {
			resp.Delivered++
		} else {
			resp.Failed++
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
