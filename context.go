package dbrx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// ExecContext represents a remote execution context: a stateful interpreter
// session on a cluster, addressed by an opaque identifier.
type ExecContext struct {
	// ID is the server-assigned identifier for the context.
	ID string `json:"id"`

	// Name is the name the context was created with.
	Name string `json:"name,omitempty"`

	// Language is the interpreter language of the context.
	Language string `json:"language"`

	// rAvailable is the R interop flag, resolved once at creation.
	rAvailable bool
}

// RAvailable reports whether R code can run in this context through the
// bridging package. The value is resolved once, when the context is created
// or attached, and memoized on the context.
func (ec *ExecContext) RAvailable() bool {
	return ec.rAvailable
}

// ContextState is the server-reported state of an execution context.
type ContextState string

// Context states reported by the contexts/status endpoint.
const (
	ContextPending ContextState = "Pending"
	ContextRunning ContextState = "Running"
	ContextError   ContextState = "Error"
)

// ContextInfo is the payload returned by the contexts/status endpoint.
type ContextInfo struct {
	// ID is the context identifier.
	ID string `json:"id"`

	// Status is the current context state.
	Status ContextState `json:"status"`
}

// CreateContext creates a new execution context on the cluster and makes
// it the client's active context.
//
// At most one context is active per client: if one is already set the call
// fails with ErrContextExists without touching the control plane. An empty
// name is replaced with a generated one.
//
// When the client's R interop mode is RInteropCheck, the new context is
// probed once for the bridging package and the outcome is memoized on the
// returned ExecContext.
func (c *Cluster) CreateContext(ctx context.Context, name string, opts ...ContextOption) (*ExecContext, error) {
	cfg := defaultContextConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c.mu.RLock()
	active := c.active
	c.mu.RUnlock()
	if active != nil {
		c.logger.Error("context already exists, destroy it before creating a new one", "contextId", active.ID)
		return nil, fmt.Errorf("%w: context %s is active", ErrContextExists, active.ID)
	}

	if name == "" {
		name = "dbrx-go-" + uuid.NewString()[:8]
	}

	// Set request timeout
	timeout := cfg.requestTimeout
	if timeout == 0 {
		timeout = c.requestTimeout
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c.logger.Info("creating execution context", "name", name, "language", cfg.language, "clusterId", c.ClusterID())

	reqBody := &contextCreateRequest{
		Language:  cfg.language,
		ClusterID: c.ClusterID(),
		Name:      name,
	}

	respBody, statusCode, err := c.api.doRequest(reqCtx, http.MethodPost, "/contexts/create", nil, reqBody)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, NewRequestTimeoutError(timeout)
		}
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, formatHTTPError(statusCode, "/contexts/create", string(respBody))
	}

	var idResp idResponse
	if err := json.Unmarshal(respBody, &idResp); err != nil {
		return nil, fmt.Errorf("failed to parse context response: %w", err)
	}
	if idResp.ID == "" {
		return nil, fmt.Errorf("%w: contexts/create returned no id", ErrUnexpectedResponse)
	}

	ec := &ExecContext{
		ID:       idResp.ID,
		Name:     name,
		Language: cfg.language,
	}

	c.mu.Lock()
	c.active = ec
	c.mu.Unlock()

	c.logger.Info("execution context created", "contextId", ec.ID, "name", name)

	// Resolve R interop against the live context, not the bounded request
	// context: the probe is a full submit/poll cycle.
	c.resolveRInterop(ctx, ec)

	return ec, nil
}

// AttachContext adopts an existing execution context by id, making it the
// client's active context after validating it with the control plane.
//
// The context is assumed to host a Python interpreter; the status endpoint
// does not report a language. R interop is resolved the same way as in
// CreateContext.
func (c *Cluster) AttachContext(ctx context.Context, contextID string) (*ExecContext, error) {
	if contextID == "" {
		return nil, fmt.Errorf("%w: context ID is required", ErrInvalidArgument)
	}

	c.mu.RLock()
	active := c.active
	c.mu.RUnlock()
	if active != nil {
		return nil, fmt.Errorf("%w: context %s is active", ErrContextExists, active.ID)
	}

	info, err := c.contextStatus(ctx, contextID)
	if err != nil {
		return nil, err
	}
	if info.Status == ContextError {
		return nil, fmt.Errorf("%w: context %s is in Error state", ErrInvalidArgument, contextID)
	}

	ec := &ExecContext{
		ID:       contextID,
		Language: LanguagePython,
	}

	c.mu.Lock()
	c.active = ec
	c.mu.Unlock()

	c.logger.Info("execution context attached", "contextId", ec.ID, "status", string(info.Status))

	c.resolveRInterop(ctx, ec)

	return ec, nil
}

// DestroyContext destroys the active execution context.
//
// The locally stored context is cleared whether or not the control plane
// accepts the destroy, so a follow-up CreateContext always starts clean.
// The HTTP failure, if any, is still returned.
func (c *Cluster) DestroyContext(ctx context.Context) error {
	c.mu.Lock()
	ec := c.active
	c.active = nil
	c.mu.Unlock()

	if ec == nil {
		c.logger.Error("context is not set, nothing to destroy")
		return ErrContextNotSet
	}

	timeout := c.requestTimeout
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqBody := &contextDestroyRequest{
		ClusterID: c.ClusterID(),
		ContextID: ec.ID,
	}

	respBody, statusCode, err := c.api.doRequest(reqCtx, http.MethodPost, "/contexts/destroy", nil, reqBody)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return NewRequestTimeoutError(timeout)
		}
		return err
	}

	if statusCode != http.StatusOK {
		return formatHTTPError(statusCode, "/contexts/destroy", string(respBody))
	}

	c.logger.Info("execution context destroyed", "contextId", ec.ID)
	return nil
}

// ContextStatus reports the control-plane state of the active context.
func (c *Cluster) ContextStatus(ctx context.Context) (*ContextInfo, error) {
	c.mu.RLock()
	ec := c.active
	c.mu.RUnlock()
	if ec == nil {
		return nil, ErrContextNotSet
	}
	return c.contextStatus(ctx, ec.ID)
}

// contextStatus fetches contexts/status for an arbitrary context id.
func (c *Cluster) contextStatus(ctx context.Context, contextID string) (*ContextInfo, error) {
	timeout := c.requestTimeout
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("clusterId", c.ClusterID())
	query.Set("contextId", contextID)

	respBody, statusCode, err := c.api.doRequest(reqCtx, http.MethodGet, "/contexts/status", query, nil)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, NewRequestTimeoutError(timeout)
		}
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, formatHTTPError(statusCode, "/contexts/status", string(respBody))
	}

	var info ContextInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to parse context status response: %w", err)
	}

	return &info, nil
}

// ActiveContext returns the active execution context, or nil when unset.
func (c *Cluster) ActiveContext() *ExecContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}
