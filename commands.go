package dbrx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Submit sends code to the active execution context and returns a handle
// for polling it, without waiting for completion.
//
// A non-2xx submission response short-circuits with an *APIError; nothing
// is polled. Empty code is logged as a warning but still submitted.
func (c *Cluster) Submit(ctx context.Context, code string, opts ...ExecOption) (*CommandHandle, error) {
	c.mu.RLock()
	ec := c.active
	c.mu.RUnlock()
	if ec == nil {
		c.logger.Error("context is not set, cannot run commands")
		return nil, ErrContextNotSet
	}

	cfg := defaultExecConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if strings.TrimSpace(code) == "" {
		c.logger.Warn("submitting empty command", "contextId", ec.ID)
	}

	timeout := c.requestTimeout
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqBody := &commandExecuteRequest{
		Language:  ec.Language,
		ClusterID: c.ClusterID(),
		Command:   code,
		ContextID: ec.ID,
	}

	respBody, statusCode, err := c.api.doRequest(reqCtx, http.MethodPost, "/commands/execute", nil, reqBody)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, NewRequestTimeoutError(timeout)
		}
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, formatHTTPError(statusCode, "/commands/execute", string(respBody))
	}

	var idResp idResponse
	if err := json.Unmarshal(respBody, &idResp); err != nil {
		return nil, fmt.Errorf("failed to parse execute response: %w", err)
	}
	if idResp.ID == "" {
		return nil, fmt.Errorf("%w: commands/execute returned no run id", ErrUnexpectedResponse)
	}

	c.logger.Info("command submitted", "commandId", idResp.ID, "contextId", ec.ID, "codeLen", len(code))

	return &CommandHandle{
		cluster:   c,
		contextID: ec.ID,
		id:        idResp.ID,
		timeout:   cfg.timeout,
		onStatus:  cfg.onStatus,
	}, nil
}

// Execute runs code in the active execution context and waits for it to
// reach a terminal status.
//
// Only a run that ends with status Finished returns a payload; every other
// outcome is an error: ErrContextNotSet before submission, *APIError for
// control-plane failures, *CommandFailedError for terminal non-Finished
// runs, and *TimeoutError when the submit/poll cycle exceeds its bound.
//
// Example:
//
//	info, err := cluster.Execute(ctx, "1 + 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Text()) // "2"
func (c *Cluster) Execute(ctx context.Context, code string, opts ...ExecOption) (*CommandInfo, error) {
	handle, err := c.Submit(ctx, code, opts...)
	if err != nil {
		return nil, err
	}
	return handle.Wait(ctx)
}
