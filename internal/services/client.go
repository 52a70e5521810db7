// HTTP client for the listening-graph backend.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/soundgraph/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:8002/api/v1"

// DefaultTimeout is the blanket per-request timeout applied to every outgoing call.
const DefaultTimeout = 30 * time.Second

// Client is the single configured request pipeline shared by all facades.
//
// It base-URLs requests, attaches the stored bearer token, paces outgoing calls,
// and applies the global unauthorized policy (credential wipe + hook).
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	onUnauthorized func()
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	RateLimit  float64

	// OnUnauthorized runs after the token store has been cleared in response to a
	// 401. Callers use it to route back to the login surface.
	OnUnauthorized func()
}

// NewClient creates a new backend client.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}

	return &Client{
		baseURL:        opts.BaseURL,
		httpClient:     opts.HTTPClient,
		tokens:         opts.Tokens,
		limiter:        rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		onUnauthorized: opts.OnUnauthorized,
	}
}

// SetOnUnauthorized replaces the unauthorized hook.
//
// The session coordinator registers itself here after construction, since the
// client is created first.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// errorBody is the structured failure shape the backend returns for non-2xx responses.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// handleUnauthorized clears the credential and fires the hook. Runs before the
// failure reaches the caller, so callers never see a stale token.
func (c *Client) handleUnauthorized() {
	if c.tokens != nil {
		_ = c.tokens.Clear()
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// do performs an authenticated JSON request and decodes the response into result.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
		return fmt.Errorf("%w: %s", shared.ErrUnauthorized, errorDetail(raw, resp.StatusCode))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, errorDetail(raw, resp.StatusCode))
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request to the specified path and returns the raw response.
//
// Used by the debug `api` command. The unauthorized policy still applies.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.raw(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	return c.raw(ctx, http.MethodPost, path, reader)
}

func (c *Client) raw(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// errorDetail extracts the backend's structured detail message, falling back to
// the HTTP status.
func errorDetail(body []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	return fmt.Sprintf("status %d", status)
}
