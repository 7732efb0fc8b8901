package api

import "net/http"

// StatusDependencies exposes the remote configuration.
type StatusDependencies interface {
	HasAccess() bool
	Models() map[string][]string
}

type statusResponse struct {
	HasAccess bool                `json:"hasAccess"`
	Models    map[string][]string `json:"models"`
}

// StatusHandler reports whether remote inference is configured.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r, "api.status") {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{HasAccess: h.deps.HasAccess(), Models: h.deps.Models()})
}
