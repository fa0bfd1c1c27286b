package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/logger"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to every outgoing call.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string {
	return string(t)
}

// Client talks JSON to the restaurant backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     logger.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokenSource returns a copy of c that authenticates with ts.
// The underlying http.Client is shared.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SuccessResponse holds the payload of a 2xx response. Data is the value of a
// {"data": ...} envelope when present, else the whole body.
type SuccessResponse struct {
	StatusCode int
	Data       json.RawMessage
}

// HTTPError carries the raw status and body of a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Body)
}

func (c *Client) List(ctx context.Context, resource string) (*SuccessResponse, error) {
	return c.Request(ctx, http.MethodGet, resource, nil)
}

func (c *Client) Get(ctx context.Context, resource, id string) (*SuccessResponse, error) {
	return c.Request(ctx, http.MethodGet, resource+"/"+id, nil)
}

func (c *Client) Create(ctx context.Context, resource string, payload any) (*SuccessResponse, error) {
	return c.Request(ctx, http.MethodPost, resource, payload)
}

func (c *Client) Update(ctx context.Context, resource, id string, payload any) (*SuccessResponse, error) {
	return c.Request(ctx, http.MethodPut, resource+"/"+id, payload)
}

func (c *Client) Delete(ctx context.Context, resource, id string) (*SuccessResponse, error) {
	return c.Request(ctx, http.MethodDelete, resource+"/"+id, nil)
}

// Request performs a single call. Failures are *apperr.Error values whose kind
// follows the response status; transport failures are Network.
func (c *Client) Request(ctx context.Context, method, path string, payload any) (*SuccessResponse, error) {
	if c == nil {
		return nil, apperr.New(apperr.Network, "api client not configured")
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "cannot encode request", err)
		}
		body = bytes.NewReader(raw)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "method", method, "path", path, "error", err)
		return nil, apperr.Wrap(apperr.Network, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("backend rejected request", "method", method, "path", path, "status", resp.StatusCode)
		return nil, statusError(resp.StatusCode, raw)
	}

	return &SuccessResponse{StatusCode: resp.StatusCode, Data: unwrapEnvelope(raw)}, nil
}

func unwrapEnvelope(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if data, ok := env["data"]; ok {
				return data
			}
		}
	}
	return json.RawMessage(trimmed)
}

func statusError(status int, raw []byte) error {
	cause := &HTTPError{StatusCode: status, Body: strings.TrimSpace(string(raw))}
	msg := backendMessage(raw)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apperr.Wrap(KindForStatus(status), msg, cause)
}

// backendMessage extracts a human message from common error bodies.
func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	switch v := body.Error.(type) {
	case string:
		return v
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			return m
		}
	}
	return ""
}

// KindForStatus maps an HTTP status to an error kind.
func KindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusUnauthorized:
		return apperr.Authentication
	case http.StatusForbidden:
		return apperr.Authorization
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		return apperr.Validation
	default:
		return apperr.Network
	}
}

// StatusOf returns the HTTP status behind err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
