// Package client is the resilient HTTP client every API module goes
// through. It injects the bearer token from the session store on each
// request and owns the unauthorized path: a 401 triggers a single-flight
// token refresh and one retry; when no refresh is possible the token pair
// is cleared and the 401 is returned to the caller. Call sites never touch
// auth headers or expiry themselves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	interrors "github.com/learnkit/learnkit-go/internal/errors"
	"github.com/learnkit/learnkit-go/session"
)

// RefreshFunc exchanges the stored refresh token for a new pair and
// persists it, returning the new access token. It must fail fast (with
// interrors.ErrNoRefreshToken) when there is nothing to refresh from.
type RefreshFunc func(ctx context.Context) (string, error)

// Client wraps outbound HTTP calls with bearer injection and 401 recovery.
type Client struct {
	baseURL    string
	store      session.Store
	httpClient *http.Client
	log        zerolog.Logger

	refreshLock sync.RWMutex
	refresh     RefreshFunc

	// epoch increments whenever the session changes (refresh or clear) so
	// that concurrent 401s against the same stale token share one refresh.
	epoch        atomic.Int64
	refreshGroup singleflight.Group
}

// Option modifies a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (timeouts, transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRefreshFunc wires the refresh operation into the 401 response path.
func WithRefreshFunc(fn RefreshFunc) Option {
	return func(c *Client) { c.refresh = fn }
}

// New creates a Client for the given API base URL. The store is required:
// the client reads the access token from it on every request and clears the
// token pair on unrecoverable 401s.
func New(baseURL string, store session.Store, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SetRefreshFunc wires the refresh operation after construction. The session
// manager calls this once it exists, since it is built on top of the Client.
func (c *Client) SetRefreshFunc(fn RefreshFunc) {
	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()
	c.refresh = fn
}

func (c *Client) refreshFunc() RefreshFunc {
	c.refreshLock.RLock()
	defer c.refreshLock.RUnlock()
	return c.refresh
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the session store the client reads tokens from.
func (c *Client) Store() session.Store { return c.store }

// RequestOption modifies a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	noAuthRetry bool
}

// NoAuthRetry disables the refresh-and-retry path for this request. The
// auth endpoints themselves use it so a failing /auth/refresh cannot
// recurse into another refresh.
func NoAuthRetry() RequestOption {
	return func(o *requestOptions) { o.noAuthRetry = true }
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any, options ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out, options...)
}

// PostJSON performs a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any, options ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, out, options...)
}

// PatchJSON performs a PATCH with a JSON body and decodes the response into out.
func (c *Client) PatchJSON(ctx context.Context, path string, body, out any, options ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodPatch, path, body, out, options...)
}

// DoJSON performs one request. On a 401 it attempts a single-flight refresh
// and retries exactly once with the new token; if refresh is unavailable or
// fails, the token pair is cleared and the 401 is returned as an *APIError.
// The request body is re-marshalled per attempt, so retries are safe.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any, options ...RequestOption) error {
	opts := requestOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	err := c.attempt(ctx, method, path, body, out)
	if err == nil {
		return nil
	}
	if !IsUnauthorized(err) || opts.noAuthRetry {
		return err
	}

	if _, refreshErr := c.refreshShared(ctx); refreshErr != nil {
		c.log.Debug().Err(refreshErr).Str("path", path).Msg("refresh after 401 failed, clearing session")
		c.clearSession()
		return err
	}

	retryErr := c.attempt(ctx, method, path, body, out)
	if IsUnauthorized(retryErr) {
		// New token rejected too. Give up and drop the session.
		c.clearSession()
	}
	return retryErr
}

// attempt performs a single HTTP round trip with the current access token.
func (c *Client) attempt(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.DoJSON] marshal request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.DoJSON] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, ok := c.store.Get(session.KeyAccessToken); ok && access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return interrors.Wrapf(interrors.ErrBackendUnavailable, "[Client.DoJSON] %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "[Client.DoJSON] decode %s %s", method, path)
	}
	return nil
}

// refreshShared runs the refresh function with single-flight semantics keyed
// by the current session epoch: callers racing against the same stale token
// share one refresh call and its result.
func (c *Client) refreshShared(ctx context.Context) (string, error) {
	refresh := c.refreshFunc()
	if refresh == nil {
		return "", errors.New("[Client.refreshShared] no refresh function configured")
	}

	key := fmt.Sprintf("refresh-%d", c.epoch.Load())
	v, err, _ := c.refreshGroup.Do(key, func() (any, error) {
		access, err := refresh(ctx)
		if err != nil {
			return nil, err
		}
		c.epoch.Add(1)
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// clearSession drops the token pair and advances the epoch so a later 401
// cannot reuse a refresh that ran against the dead session.
func (c *Client) clearSession() {
	session.ClearTokenPair(c.store)
	c.epoch.Add(1)
}
