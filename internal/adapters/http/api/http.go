// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/campusai/internal/domain/model"
	"github.com/okian/campusai/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Summarize(ctx context.Context, text string) model.SummaryResult
	Translate(ctx context.Context, text, targetLanguage string) model.TranslationResult
	Moderate(ctx context.Context, text string) model.ModerationResult
	RankOpportunities(ctx context.Context, profile model.StudentProfile, opportunities []model.Opportunity) model.MatchReport
	CheckIn(ctx context.Context, message, mood string) model.CheckinResult

	// HasAccess and Models describe the remote configuration.
	HasAccess() bool
	Models() map[string][]string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for request and panic logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the capability API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	statusHandler     *StatusHandler
	capabilityHandler *CapabilityHandler
	matchHandler      *MatchHandler

	maxBodyBytes int64
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.statusHandler = NewStatusHandler(deps)
	s.capabilityHandler = NewCapabilityHandler(deps, s.maxBodyBytes)
	s.matchHandler = NewMatchHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	routes := []struct {
		path     string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"/healthz", "healthz", s.healthHandler.HandleHealth},
		{"/stats", "stats", s.statsHandler.HandleStats},
		{"/status", "status", s.statusHandler.HandleStatus},
		{"/v1/summarize", "summarize", s.capabilityHandler.HandleSummarize},
		{"/v1/translate", "translate", s.capabilityHandler.HandleTranslate},
		{"/v1/moderate", "moderate", s.capabilityHandler.HandleModerate},
		{"/v1/checkin", "checkin", s.capabilityHandler.HandleCheckin},
		{"/v1/opportunities/match", "match", s.matchHandler.HandleMatch},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.path, s.wrap(rt.handler, rt.endpoint))
	}
}

// wrap applies request-id, metrics and panic recovery, outermost first.
func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(RecoverMiddleware(h, s.logger), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON value from a size-limited body into dst and
// answers the request itself when decoding fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return false
	}
	return true
}

// requirePost answers non-POST requests with 405.
func requirePost(w http.ResponseWriter, r *http.Request, op string) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

// requireGet answers non-GET requests with 405.
func requireGet(w http.ResponseWriter, r *http.Request, op string) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

func missingField(op, name string) error {
	return WrapKind(op, ErrBadRequest, fmt.Errorf("missing field %q", name))
}
