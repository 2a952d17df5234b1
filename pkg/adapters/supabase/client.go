// Package supabase talks to the hosted backend: PostgREST tables, the auth
// service, object storage and the realtime change feed.
//
// Requests run with the access token of the session found in the context
// (see domain.ContextWithSession) so row-level security applies, and fall back
// to the anon key otherwise.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/tidwall/gjson"
)

// Client is a thin REST client for one project.
type Client struct {
	baseURL    *url.URL
	anonKey    string
	serviceKey string
	http       *http.Client
	logger     *slog.Logger
	heartbeat  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithServiceKey makes requests without a session use the service role key.
// Server-side jobs such as seeding need it to bypass row-level security.
func WithServiceKey(key string) Option {
	return func(cl *Client) { cl.serviceKey = key }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithHeartbeat sets how often realtime subscriptions ping the server (25s by default).
func WithHeartbeat(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.heartbeat = d
		}
	}
}

// New creates a Client for the project at rawURL.
func New(rawURL, anonKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("supabase: invalid project url %q", rawURL)
	}
	if anonKey == "" {
		return nil, fmt.Errorf("supabase: anon key is required")
	}
	c := &Client{
		baseURL:   u,
		anonKey:   anonKey,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logging.NewNop(),
		heartbeat: heartbeatInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) bearer(ctx context.Context) string {
	if s, ok := domain.SessionFromContext(ctx); ok && s.AccessToken != "" {
		return s.AccessToken
	}
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	raw     io.Reader
	token   string
	headers map[string]string
}

// do sends req and decodes a 2xx JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, op string, req request, out any) error {
	u := *c.baseURL
	u.Path += req.path
	u.RawQuery = req.query.Encode()

	body := req.raw
	contentType := ""
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	token := req.token
	if token == "" {
		token = c.bearer(ctx)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("Backend request failed", "op", op, "err", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrRemote, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", domain.ErrRemote, op, err)
	}
	if resp.StatusCode >= 300 {
		err := responseError(op, resp.StatusCode, raw)
		c.logger.Debug("Backend request rejected", "op", op, "status", resp.StatusCode, "err", err)
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", domain.ErrRemote, op, err)
	}
	return nil
}

// responseError maps an error response of PostgREST, auth or storage onto the
// domain sentinels. The three services use different body shapes.
func responseError(op string, status int, body []byte) error {
	doc := gjson.ParseBytes(body)
	code := doc.Get("code").String()
	msg := firstString(doc, "message", "msg", "error_description", "error")
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case code == "PGRST116", status == http.StatusNotFound, doc.Get("statusCode").String() == "404":
		return fmt.Errorf("%w: %s: %s", domain.ErrNotFound, op, msg)
	case status == http.StatusUnauthorized, code == "PGRST301", code == "PGRST303":
		return fmt.Errorf("%w: %s: %s", domain.ErrUnauthenticated, op, msg)
	case code == "23505":
		return fmt.Errorf("%w: %s: %s", domain.ErrValidation, op, msg)
	default:
		return fmt.Errorf("%w: %s: %d %s", domain.ErrRemote, op, status, msg)
	}
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
