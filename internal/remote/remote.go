// Package remote defines the marketplace API collaborator surface. The
// state layer only needs fetch/mutate against named resources; transport
// policy, auth headers and retries belong to the implementation behind it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client is the remote marketplace API surface consumed by the seller
// catalog and subscription aggregates.
type Client interface {
	Fetch(ctx context.Context, resource string, params url.Values) (json.RawMessage, error)
	Mutate(ctx context.Context, resource string, payload any) (json.RawMessage, error)
}

// RemoteError wraps a remote API failure. It is passed through untranslated
// so callers can tell it apart from a PersistenceError.
type RemoteError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote: %s: status %d", e.Resource, e.StatusCode)
	}
	return fmt.Sprintf("remote: %s: %v", e.Resource, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// HTTPClient implements Client over plain JSON HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a client rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context, resource string, params url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RemoteError{Resource: resource, Err: err}
	}
	return c.do(req, resource)
}

func (c *HTTPClient) Mutate(ctx context.Context, resource string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RemoteError{Resource: resource, Err: err}
	}
	endpoint := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RemoteError{Resource: resource, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, resource)
}

func (c *HTTPClient) do(req *http.Request, resource string) (json.RawMessage, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Resource: resource, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RemoteError{Resource: resource, StatusCode: res.StatusCode, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Warn("remote request failed",
			zap.String("resource", resource),
			zap.Int("status", res.StatusCode))
		return nil, &RemoteError{Resource: resource, StatusCode: res.StatusCode}
	}
	return json.RawMessage(body), nil
}
