package dbrx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CommandHandle tracks one submitted command run. It provides methods for
// polling the run to completion, fetching a single status snapshot, and
// cancelling the run.
type CommandHandle struct {
	cluster   *Cluster
	contextID string
	id        string

	timeout  time.Duration
	onStatus func(CommandStatus)
}

// ID returns the run identifier assigned at submission.
func (h *CommandHandle) ID() string {
	return h.id
}

// Status fetches a single status snapshot for the run.
func (h *CommandHandle) Status(ctx context.Context) (*CommandInfo, error) {
	timeout := h.cluster.requestTimeout
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("clusterId", h.cluster.ClusterID())
	query.Set("contextId", h.contextID)
	query.Set("commandId", h.id)

	respBody, statusCode, err := h.cluster.api.doRequest(reqCtx, http.MethodGet, "/commands/status", query, nil)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, NewRequestTimeoutError(timeout)
		}
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, formatHTTPError(statusCode, "/commands/status", string(respBody))
	}

	var info CommandInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &info, nil
}

// Wait polls the run until it reaches a terminal status, sleeping the
// configured poll interval before each status fetch.
//
// A run that ends with status Finished returns its full status payload.
// Any other terminal status returns a *CommandFailedError carrying the
// status and results. When the deadline passes or ctx is cancelled, Wait
// issues a best-effort Cancel and returns a *TimeoutError or the context
// error.
func (h *CommandHandle) Wait(ctx context.Context) (*CommandInfo, error) {
	timeout := h.timeout
	if timeout == 0 {
		timeout = h.cluster.execTimeout
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	interval := h.cluster.PollInterval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	status := StatusRunning
	for {
		h.cluster.logger.Debug("command in flight", "commandId", h.id, "status", string(status))

		select {
		case <-waitCtx.Done():
			return nil, h.abort(ctx, waitCtx.Err(), timeout)
		case <-timer.C:
		}

		info, err := h.Status(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, h.abort(ctx, waitCtx.Err(), timeout)
			}
			h.cluster.logger.Error("failed to retrieve command status", "commandId", h.id, "error", err)
			return nil, err
		}

		if info.Status != status && h.onStatus != nil {
			h.onStatus(info.Status)
		}
		status = info.Status

		if status.Terminal() {
			h.cluster.logger.Info("command completed", "commandId", h.id, "status", string(status))
			if status == StatusFinished {
				return info, nil
			}
			return nil, &CommandFailedError{
				CommandID: h.id,
				Status:    status,
				Results:   info.Results,
			}
		}

		timer.Reset(h.cluster.PollInterval())
	}
}

// abort cancels the remote run after a local deadline or cancellation. The
// cancel is best effort: a cancel failure is logged, not returned.
func (h *CommandHandle) abort(ctx context.Context, cause error, timeout time.Duration) error {
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.cluster.requestTimeout)
	defer cancel()

	if err := h.Cancel(cancelCtx); err != nil {
		h.cluster.logger.Warn("failed to cancel command after local abort", "commandId", h.id, "error", err)
	}

	if errors.Is(cause, context.DeadlineExceeded) {
		h.cluster.logger.Error("command timed out", "commandId", h.id, "timeout", timeout.String())
		return NewExecutionTimeoutError(timeout)
	}
	return cause
}

// Cancel asks the control plane to cancel the run.
func (h *CommandHandle) Cancel(ctx context.Context) error {
	timeout := h.cluster.requestTimeout
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqBody := &commandCancelRequest{
		ClusterID: h.cluster.ClusterID(),
		ContextID: h.contextID,
		CommandID: h.id,
	}

	respBody, statusCode, err := h.cluster.api.doRequest(reqCtx, http.MethodPost, "/commands/cancel", nil, reqBody)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return NewRequestTimeoutError(timeout)
		}
		return err
	}

	if statusCode != http.StatusOK {
		return formatHTTPError(statusCode, "/commands/cancel", string(respBody))
	}

	h.cluster.logger.Info("command cancel requested", "commandId", h.id)
	return nil
}
