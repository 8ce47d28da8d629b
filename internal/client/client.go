// Package client provides a GraphQL client for the PokeAPI catalog.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/pokerub/internal/metrics"
	"github.com/raphaelgruber/pokerub/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// DefaultEndpoint is the public PokeAPI GraphQL endpoint.
const DefaultEndpoint = "https://beta.pokeapi.co/graphql/v1beta"

// maxErrorBodyLen caps how much of a non-200 body ends up in an error.
const maxErrorBodyLen = 200

var (
	// ErrNotFound is returned when a by-id query yields no record.
	ErrNotFound = errors.New("pokemon not found")
	// ErrGraphQL matches every *GraphQLError.
	ErrGraphQL = errors.New("graphql error")
)

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Errors gqlerror.List
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Message)
	}
	return "graphql error: " + strings.Join(msgs, "; ")
}

func (e *GraphQLError) Unwrap() error { return ErrGraphQL }

// Client is a GraphQL client for the PokeAPI catalog.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records every request under metrics.OpGraphQL.
func WithMetrics(mc *metrics.Collector) Option {
	return func(c *Client) { c.metrics = mc }
}

// New creates a client for endpoint (DefaultEndpoint when empty). Every
// operation the client sends is validated against the embedded schema
// here, so a broken query fails at startup rather than on the wire.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for name, q := range operations {
		if _, err := schema.Validate(q); err != nil {
			return nil, fmt.Errorf("validate %s: %w", name, err)
		}
	}
	return c, nil
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// graphQLRequest is the request payload for GraphQL operations.
type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the response payload from GraphQL operations.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// Execute sends a GraphQL query and decodes its data into result.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, result any) (err error) {
	start := time.Now()
	requestID := uuid.New().String()
	defer func() {
		c.metrics.Observe(metrics.OpGraphQL, start, err)
		attrs := []any{"request_id", requestID, "duration_ms", time.Since(start).Milliseconds()}
		if err != nil {
			c.logger.Warn("graphql request failed", append(attrs, "error", err)...)
			return
		}
		c.logger.Debug("graphql request completed", attrs...)
	}()

	reqBody, err := json.Marshal(graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s - %s", resp.Status, truncate(string(body), maxErrorBodyLen))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return &GraphQLError{Errors: gqlResp.Errors}
	}

	if result != nil && len(gqlResp.Data) > 0 {
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
