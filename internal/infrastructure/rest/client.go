// Package rest is the sole network-facing gateway of the console. Client
// attaches the current access token to every outbound call, detects
// authorization failures, drives the refresh coordinator, retries exactly
// once, and surfaces everything else as typed errors.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "https://crm.example.com/api".
	BaseURL string
	// Store supplies the bearer token for outbound calls and receives
	// refreshed credentials.
	Store ports.CredentialStore
	// HTTPClient defaults to one with a 30s timeout.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the authenticated HTTP gateway. All consoles calls go through Do
// (usually via the typed bindings in auth.go, orders.go, and admin.go).
type Client struct {
	baseURL   string
	http      *http.Client
	store     ports.CredentialStore
	refresher *RefreshCoordinator
	log       zerolog.Logger
}

// New builds a Client and its refresh coordinator over the given store.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		store:   opts.Store,
		log:     opts.Logger,
	}
	c.refresher = newRefreshCoordinator(c, opts.Store, opts.Logger)
	return c
}

// Refresher exposes the coordinator so the session layer can register its
// teardown hook.
func (c *Client) Refresher() *RefreshCoordinator {
	return c.refresher
}

// Do issues an authenticated request and decodes the envelope's data field
// into out (which may be nil). On a 401 it refreshes the token pair and
// re-issues the request exactly once; whatever the retry returns is final.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := c.send(ctx, method, path, query, body, out, true)
	if apiErr, ok := asAPIError(err); ok && apiErr.Status == http.StatusUnauthorized {
		if _, refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
			return refreshErr
		}
		metrics.RequestRetriesTotal.Inc()
		c.log.Debug().Str("method", method).Str("path", path).Msg("retrying after token refresh")
		return c.send(ctx, method, path, query, body, out, true)
	}
	return err
}

// send performs a single request attempt. withAuth controls bearer
// attachment; the auth endpoints (login, register, refresh) go out bare.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, withAuth bool) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if withAuth {
		if rec, ok := c.store.Get(); ok && rec.Credentials.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+rec.Credentials.AccessToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, "network_error").Inc()
		return fmt.Errorf("rest: %s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	return decode(resp, out)
}

// decode reads the envelope. Non-2xx responses become APIErrors carrying the
// server's message and field errors; an unparseable body still yields a typed
// error from the status code alone.
func decode(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rest: read response: %w: %w", domain.ErrNetwork, err)
	}

	var env envelope
	parsed := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed {
			return newAPIError(resp.StatusCode, &env)
		}
		return newAPIError(resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if !parsed {
		return fmt.Errorf("rest: malformed response envelope (status %d)", resp.StatusCode)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("rest: decode response data: %w", err)
	}
	return nil
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
