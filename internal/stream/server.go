package stream

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/argus-vision/argus/internal/registry"
	"github.com/argus-vision/argus/internal/storage/sqlite"
)

// Status is the health surface payload.
type Status struct {
	Status        string         `json:"status"`
	Ready         bool           `json:"ready"`
	Real          bool           `json:"real"`
	Ticks         int64          `json:"ticks"`
	FallbackCalls int64          `json:"fallback_calls"`
	Subscribers   int            `json:"subscribers"`
	Backends      registry.Stats `json:"backends"`
}

// StatusFunc assembles the current status snapshot.
type StatusFunc func() Status

// NewMux wires the HTTP surface: live results over /ws, health over
// /healthz, persisted alerts over /alerts. The alert store may be nil when
// persistence is disabled.
func NewMux(hub *Hub, status StatusFunc, alerts *sqlite.AlertStore) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", hub.HandleWS)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, status())
	})

	mux.HandleFunc("/alerts", func(w http.ResponseWriter, r *http.Request) {
		if alerts == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "alert persistence disabled"})
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		records, err := alerts.ListRecent(limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if records == nil {
			records = []sqlite.AlertRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
