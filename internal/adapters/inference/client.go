// Package inference is the HTTP client for the hosted model-inference service.
// Each call is one authenticated POST to {base}/{modelId} bounded by a
// per-attempt timeout. Callers decide what to do on failure.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/campusai/pkg/logger"
	"github.com/okian/campusai/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co/models"
	DefaultTimeout = 35 * time.Second

	maxResponseBytes = 4 << 20
	logSnippetBytes  = 256
)

// Call outcomes recorded in metrics.
const (
	outcomeOK            = "ok"
	outcomeNoCredentials = "no_credentials"
	outcomeTransport     = "transport_error"
	outcomeStatus        = "status_error"
	outcomeShape         = "shape_error"
)

// Request is the JSON body sent to a model.
type Request struct {
	Inputs     any            `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the inference endpoint prefix.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithToken sets the bearer token. A blank token disables remote calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout sets the per-attempt deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client calls hosted models. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	hc      *http.Client
	log     logger.Logger
}

// New builds a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		hc:      &http.Client{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAccess reports whether a token is configured. It performs no I/O.
func (c *Client) HasAccess() bool {
	return c.token != ""
}

// Call posts req to modelID and returns the raw 2xx response body.
func (c *Client) Call(ctx context.Context, capability, modelID string, req Request) ([]byte, error) {
	if !c.HasAccess() {
		metrics.RecordInferenceRequest(capability, modelID, outcomeNoCredentials)
		return nil, ErrNoCredentials
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+modelID, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	log := c.log.With(
		logger.String("capability", capability),
		logger.String("model", modelID),
		logger.String("request_id", requestID),
	)
	log.Debug(ctx, "calling inference model")

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	metrics.RecordInferenceDuration(capability, modelID, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordInferenceRequest(capability, modelID, outcomeTransport)
		log.Warn(ctx, "inference request failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		metrics.RecordInferenceRequest(capability, modelID, outcomeTransport)
		log.Warn(ctx, "reading inference response failed", logger.Error(err))
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordInferenceRequest(capability, modelID, outcomeStatus)
		log.Warn(ctx, "inference model returned non-2xx",
			logger.Int("status", resp.StatusCode),
			logger.String("body", snippet(body)))
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if len(body) > maxResponseBytes {
		metrics.RecordInferenceRequest(capability, modelID, outcomeShape)
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrShape, maxResponseBytes)
	}

	metrics.RecordInferenceRequest(capability, modelID, outcomeOK)
	return body, nil
}

// parsed runs parse on a successful body and records shape failures.
func parsed[T any](ctx context.Context, c *Client, capability, modelID string, body []byte, parse func([]byte) (T, error)) (T, error) {
	v, err := parse(body)
	if err != nil {
		metrics.RecordInferenceRequest(capability, modelID, outcomeShape)
		c.log.Warn(ctx, "unrecognized inference response",
			logger.String("capability", capability),
			logger.String("model", modelID),
			logger.String("body", snippet(body)))
	}
	return v, err
}

func snippet(b []byte) string {
	if len(b) > logSnippetBytes {
		b = b[:logSnippetBytes]
	}
	return string(b)
}
