package api

import (
	"net/http"
)

type textRequest struct {
	Text *string `json:"text"`
}

type translateRequest struct {
	Text           *string `json:"text"`
	TargetLanguage string  `json:"targetLanguage"`
}

type checkinRequest struct {
	Message *string `json:"message"`
	Mood    string  `json:"mood"`
}

// CapabilityHandler serves the text-in capability endpoints.
type CapabilityHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewCapabilityHandler creates a new capability handler.
func NewCapabilityHandler(deps Dependencies, maxBodyBytes int64) *CapabilityHandler {
	return &CapabilityHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleSummarize handles POST /v1/summarize requests.
func (h *CapabilityHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	const op = "api.summarize"
	var req textRequest
	if !requirePost(w, r, op) || !decodeJSON(w, r, op, h.maxBodyBytes, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "bad_request", missingField(op, "text"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Summarize(r.Context(), *req.Text))
}

// HandleTranslate handles POST /v1/translate requests.
func (h *CapabilityHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	const op = "api.translate"
	var req translateRequest
	if !requirePost(w, r, op) || !decodeJSON(w, r, op, h.maxBodyBytes, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "bad_request", missingField(op, "text"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Translate(r.Context(), *req.Text, req.TargetLanguage))
}

// HandleModerate handles POST /v1/moderate requests.
func (h *CapabilityHandler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.moderate"
	var req textRequest
	if !requirePost(w, r, op) || !decodeJSON(w, r, op, h.maxBodyBytes, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "bad_request", missingField(op, "text"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Moderate(r.Context(), *req.Text))
}

// HandleCheckin handles POST /v1/checkin requests.
func (h *CapabilityHandler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	const op = "api.checkin"
	var req checkinRequest
	if !requirePost(w, r, op) || !decodeJSON(w, r, op, h.maxBodyBytes, &req) {
		return
	}
	if req.Message == nil {
		writeError(w, http.StatusBadRequest, "bad_request", missingField(op, "message"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CheckIn(r.Context(), *req.Message, req.Mood))
}
