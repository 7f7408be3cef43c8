package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/xraph/courier"
	"github.com/xraph/courier/delivery"
	"github.com/xraph/courier/event"
)

type dispatchEventRequest struct {
	Type      event.Type     `json:"type"`
	ID        string         `json:"event_id"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type dispatchEventResponse struct {
	EventID    string             `json:"event_id"`
	Deliveries int                `json:"deliveries"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Records    []*delivery.Record `json:"records"`
}

// dispatchEvent runs a dispatch and reports its records. With ?async=true it
// returns 202 immediately instead.
func (h *Handler) dispatchEvent(w http.ResponseWriter, r *http.Request) {
	var req dispatchEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Type.Known() {
		writeError(w, http.StatusBadRequest, "unknown event type: "+string(req.Type))
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	evt := &event.Event{
		Type:      req.Type,
		ID:        req.ID,
		Timestamp: req.Timestamp,
		Data:      req.Data,
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().Unix()
	}
	if evt.Data == nil {
		evt.Data = map[string]any{}
	}

	if queryBool(r, "async") {
		if err := h.relay.DispatchAsync(r.Context(), evt); err != nil {
			writeError(w, dispatchStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"event_id": evt.ID})
		return
	}

	records, err := h.relay.TryDispatch(r.Context(), evt)
	if err != nil {
		writeError(w, dispatchStatus(err), err.Error())
		return
	}
	resp := dispatchEventResponse{
		EventID:    evt.ID,
		Deliveries: len(records),
		Records:    records,
	}
	if resp.Records == nil {
		resp.Records = []*delivery.Record{}
	}
	for _, rec := range records {
		if rec.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// dispatchStatus maps a refused dispatch to its HTTP status.
func dispatchStatus(err error) int {
	if errors.Is(err, courier.ErrStopped) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}
