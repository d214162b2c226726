package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/a1rzayev/footbook-go/internal/credstore"
)

const userAgent = "footbook-go/0.1"

// Client is an HTTP client for the footbook backend. Do attaches the stored
// bearer credential before every send and transparently rotates the token
// pair after a single authorization failure before resurfacing the error.
// All other errors pass through unchanged; there is no backoff and no retry
// beyond the one refresh-driven replay.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      credstore.Store
	logger     *slog.Logger
	deviceID   string

	// refreshGroup coalesces concurrent refresh attempts behind a single
	// in-flight exchange, keyed by the stale access token.
	refreshGroup singleflight.Group
}

// NewClient creates a backend client. store must not be nil — the pipeline
// reads and rotates credentials through it on every call.
func NewClient(baseURL string, httpClient *http.Client, store credstore.Store, logger *slog.Logger, deviceID string) *Client {
	if store == nil {
		panic("api: NewClient requires a credential store")
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		store:      store,
		logger:     logger,
		deviceID:   deviceID,
	}
}

// attempt is one logical call through the pipeline. The retried marker is
// carried here, immutably per attempt, instead of being flagged onto a
// shared request object.
type attempt struct {
	method  string
	url     string
	payload []byte
	retried bool
}

// Do executes an HTTP request against the backend. The path is appended to
// the client's base URL. For non-nil bodies, Content-Type is set to
// application/json. The caller is responsible for closing the response body
// on success. Non-2xx responses are returned as classified *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	// Buffer the body up front so a refresh-driven replay resends
	// identical bytes.
	var payload []byte

	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("api: reading request body: %w", err)
		}

		payload = b
	}

	return c.do(ctx, attempt{method: method, url: c.baseURL + path, payload: payload})
}

func (c *Client) do(ctx context.Context, at attempt) (*http.Response, error) {
	pair, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("api: reading credentials: %w", err)
	}

	var access string
	if pair != nil {
		access = pair.AccessToken
	}

	resp, err := c.send(ctx, at, access)
	if err != nil {
		// Transport-level failure. Not retried by this layer.
		return nil, fmt.Errorf("api: %s %s: %w", at.method, at.url, err)
	}

	if resp.StatusCode != http.StatusUnauthorized || at.retried {
		return c.finish(at, resp)
	}

	// First 401 for this call: rotate credentials and replay exactly once.
	origErr := drainAPIError(resp)

	c.logger.Debug("unauthorized response, attempting token refresh",
		slog.String("method", at.method),
		slog.String("url", at.url),
	)

	if _, rotateErr := c.rotate(ctx, access); rotateErr != nil {
		c.logger.Warn("token refresh failed, clearing credentials",
			slog.String("error", rotateErr.Error()),
		)

		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Warn("clearing credentials failed",
				slog.String("error", clearErr.Error()),
			)
		}

		// The caller observes the original authentication failure, not
		// the refresh error.
		return nil, origErr
	}

	replay := at
	replay.retried = true

	return c.do(ctx, replay)
}

// finish classifies a terminal response: 2xx is handed to the caller as-is,
// everything else becomes an *APIError.
func (c *Client) finish(at attempt, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", at.method),
			slog.String("url", at.url),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	apiErr := drainAPIError(resp)

	c.logger.Debug("request failed",
		slog.String("method", at.method),
		slog.String("url", at.url),
		slog.Int("status", resp.StatusCode),
		slog.Bool("retried", at.retried),
	)

	return nil, apiErr
}

// send executes a single HTTP attempt. An empty access token sends the
// request unauthenticated.
func (c *Client) send(ctx context.Context, at attempt, access string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if at.payload != nil {
		body = bytes.NewReader(at.payload)
	}

	req, err := http.NewRequestWithContext(ctx, at.method, at.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	if at.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// rotate exchanges the stored refresh token for a new pair and persists it.
// Concurrent callers holding the same stale access token share one exchange;
// a caller arriving after another has already rotated reuses the new pair
// without hitting the refresh endpoint again.
func (c *Client) rotate(ctx context.Context, staleAccess string) (*credstore.TokenPair, error) {
	v, err, _ := c.refreshGroup.Do(staleAccess, func() (any, error) {
		pair, err := c.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}

		if pair == nil || pair.RefreshToken == "" {
			return nil, ErrNotLoggedIn
		}

		if pair.AccessToken != staleAccess {
			// Already rotated by another caller. Last writer won; reuse it.
			return pair, nil
		}

		newPair, err := c.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			return nil, err
		}

		if err := c.store.Save(ctx, *newPair); err != nil {
			return nil, fmt.Errorf("persisting rotated credentials: %w", err)
		}

		c.logger.Debug("token pair rotated")

		return newPair, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*credstore.TokenPair), nil
}

// GetJSON issues an authenticated GET and unmarshals the JSON response
// into v.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("api: decoding %s response: %w", path, err)
	}

	return nil
}
