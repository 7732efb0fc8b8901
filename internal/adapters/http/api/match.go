package api

import (
	"fmt"
	"net/http"

	"github.com/okian/campusai/internal/domain/model"
)

type matchRequest struct {
	Profile       *model.StudentProfile `json:"profile"`
	Opportunities *[]model.Opportunity  `json:"opportunities"`
}

func (m matchRequest) validate(op string) error {
	switch {
	case m.Profile == nil:
		return missingField(op, "profile")
	case m.Opportunities == nil:
		return missingField(op, "opportunities")
	}
	for i, o := range *m.Opportunities {
		if !o.Type.Valid() {
			return WrapKind(op, ErrBadRequest, fmt.Errorf("opportunities[%d].type %q is not a known opportunity type", i, o.Type))
		}
	}
	return nil
}

// MatchHandler serves opportunity ranking.
type MatchHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies, maxBodyBytes int64) *MatchHandler {
	return &MatchHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleMatch handles POST /v1/opportunities/match requests.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	var req matchRequest
	if !requirePost(w, r, op) || !decodeJSON(w, r, op, h.maxBodyBytes, &req) {
		return
	}
	if err := req.validate(op); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RankOpportunities(r.Context(), *req.Profile, *req.Opportunities))
}
