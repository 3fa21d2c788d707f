// Package httpclient sends JSON requests to the game server. It resolves the
// API base URL, attaches bearer credentials from the persisted markers and
// turns every 401 response into a forced logout event.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

const maxBodySize = 4 << 20

// Scope selects which credential a request carries.
type Scope int

const (
	// ScopePlayer attaches the player token when one is stored.
	ScopePlayer Scope = iota
	// ScopeAdmin requires the admin token.
	ScopeAdmin
	// ScopeNone sends no credential.
	ScopeNone
)

func (s Scope) String() string {
	switch s {
	case ScopePlayer:
		return "player"
	case ScopeAdmin:
		return "admin"
	case ScopeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Markers is the part of the marker manager the client needs.
type Markers interface {
	Snapshot(ctx context.Context) (model.Markers, error)
	ClearPlayer(ctx context.Context) error
}

// Request describes one API call. Path is relative to the API prefix.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Scope  Scope
}

// Response is a successful (2xx) server response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("%w: empty body", model.ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", model.ErrMalformedResponse, err)
	}
	return nil
}

// UnauthorizedEvent is emitted after a 401 response cleared the player markers.
type UnauthorizedEvent struct {
	Method    string
	Path      string
	Scope     Scope
	RequestID string
}

// Client is the single outbound HTTP pipeline of the game client.
type Client struct {
	root    string
	http    *http.Client
	timeout time.Duration
	markers Markers
	logger  *logger.Logger

	mu       sync.Mutex
	nextID   int
	handlers map[int]func(UnauthorizedEvent)
}

// New creates a Client for baseURL. A zero timeout disables the per-request deadline.
func New(baseURL string, timeout time.Duration, transport http.RoundTripper, markers Markers, logger *logger.Logger) (*Client, error) {
	root, err := normalizeRoot(baseURL)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		root:     root,
		http:     &http.Client{Transport: transport},
		timeout:  timeout,
		markers:  markers,
		logger:   logger,
		handlers: make(map[int]func(UnauthorizedEvent)),
	}, nil
}

// OnUnauthorized registers fn for forced logout events and returns a function removing it.
func (c *Client) OnUnauthorized(fn func(UnauthorizedEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.handlers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Do sends req. Non-2xx statuses return *model.HTTPError; transport failures
// wrap model.ErrServerUnavailable; deadline expiry and cancellation wrap model.ErrCancelled.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCancelled, err)
	}

	token, err := c.credential(ctx, req.Scope)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	httpReq, err := c.newRequest(ctx, req, token, requestID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("HTTP client: request failed",
			"method", req.Method,
			"path", req.Path,
			"request_id", requestID,
			"error", err.Error())
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	c.logger.Debug("HTTP client: request completed",
		"method", req.Method,
		"path", req.Path,
		"scope", req.Scope.String(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID)

	if resp.StatusCode == http.StatusUnauthorized {
		c.forceLogout(ctx, UnauthorizedEvent{
			Method:    req.Method,
			Path:      req.Path,
			Scope:     req.Scope,
			RequestID: requestID,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
			Method:     req.Method,
			Path:       req.Path,
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// URL returns the absolute URL for an endpoint path.
func (c *Client) URL(path string, query url.Values) string {
	p := "/" + strings.TrimLeft(path, "/")
	if p != "/api" && !strings.HasPrefix(p, "/api/") {
		p = "/api" + p
	}
	u := c.root + p
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) credential(ctx context.Context, scope Scope) (string, error) {
	if scope == ScopeNone {
		return "", nil
	}

	markers, err := c.markers.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	if scope == ScopeAdmin {
		if !markers.Admin.Present() {
			return "", model.ErrMissingAdminCredential
		}
		return markers.Admin.Token, nil
	}
	return markers.Player.Token, nil
}

func (c *Client) newRequest(ctx context.Context, req Request, token, requestID string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// forceLogout clears the player markers and notifies subscribers. It runs for
// every 401 regardless of which call received it.
func (c *Client) forceLogout(ctx context.Context, ev UnauthorizedEvent) {
	c.logger.Info("HTTP client: unauthorized response, clearing session",
		"method", ev.Method,
		"path", ev.Path,
		"request_id", ev.RequestID)

	if err := c.markers.ClearPlayer(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("HTTP client: failed to clear session markers",
			"request_id", ev.RequestID,
			"error", err.Error())
	}

	c.mu.Lock()
	handlers := make([]func(UnauthorizedEvent), 0, len(c.handlers))
	for _, fn := range c.handlers {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", model.ErrCancelled, ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", model.ErrCancelled, err)
	}
	return fmt.Errorf("%w: %w", model.ErrServerUnavailable, err)
}

func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func normalizeRoot(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	s = strings.TrimRight(strings.TrimSuffix(s, "/api"), "/")

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid API base URL %q: scheme and host are required", raw)
	}
	return s, nil
}
