package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client executes JSON requests with bearer-credential attachment and
// transparent single-flight recovery from credential expiry: concurrent
// requests racing an expired token share one refresh call, and requests that
// observe a 401 while a refresh is underway join the same queue.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     ports.TokenSource

	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

type refreshResult struct {
	token string
	err   error
}

var _ ports.Transport = (*Client)(nil)

func NewClient(cfg Config, tokens ports.TokenSource) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}, nil
}

// SetHTTPClient swaps the underlying HTTP client, primarily for tests against
// TLS test servers.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do runs one request and, on a 401 that has not been retried yet, resolves
// the credential through the refresh gate before retrying exactly once. Every
// other failure surfaces as-is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	err := c.roundTrip(ctx, method, path, query, body, out, c.tokens.Token())
	if err == nil || !domain.IsUnauthorized(err) {
		return err
	}

	token, refreshErr := c.awaitRefresh(ctx)
	if refreshErr != nil {
		return refreshErr
	}

	return c.roundTrip(ctx, method, path, query, body, out, token)
}

// awaitRefresh enqueues the caller as a refresh waiter and starts the
// single-flight refresh when none is running. Waiters are resumed in enqueue
// order with the refreshed credential or, collectively, with the refresh
// error.
func (c *Client) awaitRefresh(ctx context.Context) (string, error) {
	waiter := make(chan refreshResult, 1)

	c.refreshMu.Lock()
	c.waiters = append(c.waiters, waiter)
	if !c.refreshing {
		c.refreshing = true
		go c.runRefresh()
	}
	c.refreshMu.Unlock()

	select {
	case result := <-waiter:
		return result.token, result.err
	case <-ctx.Done():
		// The refresh itself keeps running; only this caller gives up.
		return "", ctx.Err()
	}
}

func (c *Client) runRefresh() {
	// Detached from any caller context: an abandoned request must not cancel
	// the refresh other waiters depend on.
	token, err := c.tokens.Refresh(context.Background())

	c.refreshMu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.refreshMu.Unlock()

	for _, waiter := range waiters {
		waiter <- refreshResult{token: token, err: err}
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, out any, token string) error {
	endpoint, err := c.resolve(path, query)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	endpoint, err := c.baseURL.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse request path %q: %w", path, err)
	}
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &domain.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}

	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
	}
	apiErr.StatusCode = resp.StatusCode

	return apiErr
}
