// Package productapi talks to the remote product collection endpoint.
package productapi

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

	"github.com/google/uuid"
	"github.com/iyhunko/product-list-sync/internal/model"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Operation names used in TransportError and logs.
const (
	OpList   = "list"
	OpCreate = "create"
	OpDelete = "delete"
)

// Client issues requests against a fixed collection endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a request timeout. Zero keeps the HTTP client default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// New creates a Client for the given collection endpoint.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the collection endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the full product collection. A null body is an ErrInvalidBody failure.
func (c *Client) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, OpList, http.MethodGet, c.baseURL, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		// a null body is not a collection; keep whatever the caller already has
		return nil, &TransportError{Op: OpList, URL: c.baseURL, Err: fmt.Errorf("%w: null collection", ErrInvalidBody)}
	}
	return products, nil
}

// Create posts a new product. The returned product carries the server-assigned id
// when the server echoes the created entity.
func (c *Client) Create(ctx context.Context, payload model.CreatePayload) (model.Product, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to marshal product: %w", err)
	}

	var created model.Product
	if err := c.do(ctx, OpCreate, http.MethodPost, c.baseURL, body, &created); err != nil {
		return model.Product{}, err
	}
	return created, nil
}

// Delete removes the product with the given id.
func (c *Client) Delete(ctx context.Context, id model.ProductID) error {
	target := c.baseURL + "/" + url.PathEscape(id.String())
	return c.do(ctx, OpDelete, http.MethodDelete, target, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("product api request finished",
		slog.String("op", op),
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	if op == OpCreate && len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrInvalidBody, err)}
	}
	return nil
}
