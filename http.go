package dbrx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// contextCreateRequest represents the request body for creating a context.
type contextCreateRequest struct {
	Language  string `json:"language"`
	ClusterID string `json:"clusterId"`
	Name      string `json:"name"`
}

// contextDestroyRequest represents the request body for destroying a context.
type contextDestroyRequest struct {
	ClusterID string `json:"clusterId"`
	ContextID string `json:"contextId"`
}

// commandExecuteRequest represents the request body for submitting a command.
type commandExecuteRequest struct {
	Language  string `json:"language"`
	ClusterID string `json:"clusterId"`
	Command   string `json:"command"`
	ContextID string `json:"contextId"`
}

// commandCancelRequest represents the request body for cancelling a command.
type commandCancelRequest struct {
	ClusterID string `json:"clusterId"`
	ContextID string `json:"contextId"`
	CommandID string `json:"commandId"`
}

// idResponse is the {id} payload returned by the create, execute, and
// cancel endpoints.
type idResponse struct {
	ID string `json:"id"`
}

// apiClient wraps the standard http.Client with control-plane specifics:
// bearer authentication, JSON bodies, and query-parameter GETs.
//
// Base URL and token are mutable; the authorization header is derived per
// request so a token change applies from the next call.
type apiClient struct {
	client *http.Client

	mu      sync.RWMutex
	baseURL string
	token   string
}

// newAPIClient creates a new apiClient.
func newAPIClient(client *http.Client, baseURL, token string) *apiClient {
	if client == nil {
		client = &http.Client{Transport: defaultTransport()}
	}
	return &apiClient{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}
}

// defaultTransport returns the transport used when no custom HTTP client
// is provided. Poll loops reissue small requests against a single host, so
// the transport keeps connections alive and enables HTTP/2.
func defaultTransport() *http.Transport {
	tr := &http.Transport{
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	http2.ConfigureTransport(tr)
	return tr
}

// setToken replaces the bearer token used for subsequent requests.
func (c *apiClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// setBaseURL replaces the API base URL used for subsequent requests.
func (c *apiClient) setBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()
}

// setHeaders sets common headers for all requests.
func (c *apiClient) setHeaders(req *http.Request) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dbrx-go/"+Version)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// endpoint joins the base URL, path, and encoded query parameters.
func (c *apiClient) endpoint(path string, query url.Values) string {
	c.mu.RLock()
	base := c.baseURL
	c.mu.RUnlock()

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs an HTTP request and returns the response body and
// status code.
func (c *apiClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
