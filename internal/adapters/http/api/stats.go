package api

import "net/http"

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests with per-capability counters.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r, "api.stats") {
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
