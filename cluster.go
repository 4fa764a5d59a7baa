package dbrx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Cluster is a client for running code on one compute cluster through the
// command execution API.
//
// The client tracks at most one active execution context at a time: create
// one with CreateContext (or adopt one with AttachContext), run code in it
// with Execute or RunR, and release it with DestroyContext.
//
// Use New to create a client.
type Cluster struct {
	mu        sync.RWMutex
	active    *ExecContext
	clusterID string
	interval  time.Duration

	requestTimeout time.Duration
	execTimeout    time.Duration
	rInterop       RInteropMode

	api    *apiClient
	logger *slog.Logger
}

// New creates a new Cluster client.
//
// The token, host, and cluster id can be provided via options or the
// DBRX_API_TOKEN, DBRX_HOST, and DBRX_CLUSTER_ID environment variables.
// No network traffic happens until a context is created.
//
// Example:
//
//	cluster, err := dbrx.New(
//	    dbrx.WithHost("https://dbc-abc123.cloud.databricks.com"),
//	    dbrx.WithToken("dapi..."),
//	    dbrx.WithClusterID("0825-113355-cars123"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Cluster, error) {
	cfg := defaultClusterConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	// Get configuration from environment variables if not provided
	if cfg.token == "" {
		cfg.token = os.Getenv("DBRX_API_TOKEN")
	}
	if cfg.host == "" {
		cfg.host = os.Getenv("DBRX_HOST")
	}
	if cfg.clusterID == "" {
		cfg.clusterID = os.Getenv("DBRX_CLUSTER_ID")
	}

	if cfg.token == "" {
		return nil, fmt.Errorf("%w: API token is required (use WithToken or set DBRX_API_TOKEN)", ErrInvalidArgument)
	}
	if cfg.clusterID == "" {
		return nil, fmt.Errorf("%w: cluster ID is required (use WithClusterID or set DBRX_CLUSTER_ID)", ErrInvalidArgument)
	}
	if cfg.baseURL == "" && cfg.host == "" {
		return nil, fmt.Errorf("%w: host is required (use WithHost or set DBRX_HOST)", ErrInvalidArgument)
	}
	if cfg.pollInterval <= 0 {
		return nil, fmt.Errorf("%w: poll interval must be positive", ErrInvalidArgument)
	}
	if !cfg.rInterop.valid() {
		return nil, fmt.Errorf("%w: invalid R interop mode %q", ErrInvalidArgument, cfg.rInterop)
	}
	if !supportsExecutionContexts(cfg.apiVersion) {
		return nil, fmt.Errorf("%w: API version %s has no execution contexts (requires >= %s)", ErrInvalidArgument, cfg.apiVersion, MinAPIVersion)
	}

	// Compute the API base URL if not provided
	if cfg.baseURL == "" {
		cfg.baseURL = strings.TrimSuffix(cfg.host, "/") + "/api/" + cfg.apiVersion
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(discardHandler{})
	}

	return &Cluster{
		clusterID:      cfg.clusterID,
		interval:       cfg.pollInterval,
		requestTimeout: cfg.requestTimeout,
		execTimeout:    cfg.execTimeout,
		rInterop:       cfg.rInterop,
		api:            newAPIClient(cfg.httpClient, cfg.baseURL, cfg.token),
		logger:         cfg.logger,
	}, nil
}

// ClusterID returns the cluster the client submits work to.
func (c *Cluster) ClusterID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clusterID
}

// SetClusterID changes the cluster subsequent operations run against.
// An already-active context keeps the cluster it was created on, so change
// the cluster id only while no context is set.
func (c *Cluster) SetClusterID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clusterID = id
}

// PollInterval returns the delay between command status polls.
func (c *Cluster) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

// SetPollInterval changes the delay between command status polls.
// Non-positive values are ignored.
func (c *Cluster) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = d
}

// SetToken replaces the bearer token. The authorization header is derived
// per request, so the new token applies from the next call.
func (c *Cluster) SetToken(token string) {
	c.api.setToken(token)
}

// SetBaseURL replaces the API base URL used for subsequent requests.
func (c *Cluster) SetBaseURL(baseURL string) {
	c.api.setBaseURL(baseURL)
}

// discardHandler behaves exactly like slog.DiscardHandler, which requires
// Go 1.24: it discards all records and is disabled at every level.
type discardHandler struct{}

func (dh discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (dh discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (dh discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return dh }
func (dh discardHandler) WithGroup(string) slog.Handler             { return dh }
