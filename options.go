package dbrx

import (
	"log/slog"
	"net/http"
	"time"
)

// clusterConfig holds configuration for creating a Cluster client.
type clusterConfig struct {
	token          string
	host           string
	baseURL        string
	clusterID      string
	apiVersion     string
	pollInterval   time.Duration
	requestTimeout time.Duration
	execTimeout    time.Duration
	rInterop       RInteropMode
	httpClient     *http.Client
	logger         *slog.Logger
}

// defaultClusterConfig returns the default cluster configuration.
func defaultClusterConfig() *clusterConfig {
	return &clusterConfig{
		apiVersion:     DefaultAPIVersion,
		pollInterval:   DefaultPollInterval,
		requestTimeout: DefaultRequestTimeout,
		execTimeout:    DefaultExecTimeout,
		rInterop:       RInteropCheck,
	}
}

// Option configures a Cluster.
type Option func(*clusterConfig)

// WithToken sets the API bearer token.
// Defaults to the DBRX_API_TOKEN environment variable.
func WithToken(token string) Option {
	return func(c *clusterConfig) {
		c.token = token
	}
}

// WithHost sets the workspace host, e.g. "https://dbc-abc123.cloud.databricks.com".
// Defaults to the DBRX_HOST environment variable.
// The API base URL is derived as {host}/api/{version} unless WithBaseURL
// overrides it.
func WithHost(host string) Option {
	return func(c *clusterConfig) {
		c.host = host
	}
}

// WithBaseURL sets the full API base URL directly, bypassing the
// {host}/api/{version} derivation.
// This is primarily used for tests and nonstandard proxies.
func WithBaseURL(url string) Option {
	return func(c *clusterConfig) {
		c.baseURL = url
	}
}

// WithClusterID sets the cluster the client submits work to.
// Defaults to the DBRX_CLUSTER_ID environment variable.
func WithClusterID(id string) Option {
	return func(c *clusterConfig) {
		c.clusterID = id
	}
}

// WithAPIVersion sets the control-plane API version.
// Defaults to "1.2", the first version with execution contexts.
func WithAPIVersion(version string) Option {
	return func(c *clusterConfig) {
		c.apiVersion = version
	}
}

// WithPollInterval sets the delay between command status polls.
// Defaults to 1 second.
func WithPollInterval(d time.Duration) Option {
	return func(c *clusterConfig) {
		c.pollInterval = d
	}
}

// WithRequestTimeout sets the default timeout for single HTTP requests.
// Defaults to 60 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *clusterConfig) {
		c.requestTimeout = d
	}
}

// WithExecTimeout sets the default bound on a whole submit/poll cycle.
// Defaults to 10 minutes. Can be overridden per command with
// WithCommandTimeout.
func WithExecTimeout(d time.Duration) Option {
	return func(c *clusterConfig) {
		c.execTimeout = d
	}
}

// WithRInterop sets the R interop mode.
// Defaults to RInteropCheck, which probes each new context once for the
// bridging package.
func WithRInterop(mode RInteropMode) Option {
	return func(c *clusterConfig) {
		c.rInterop = mode
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clusterConfig) {
		c.httpClient = client
	}
}

// WithLogger sets the structured logger used by the client.
// Defaults to a logger that discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clusterConfig) {
		c.logger = logger
	}
}

// contextConfig holds configuration for creating an execution context.
type contextConfig struct {
	language       string
	requestTimeout time.Duration
}

// defaultContextConfig returns the default context configuration.
func defaultContextConfig() *contextConfig {
	return &contextConfig{
		language: LanguagePython,
	}
}

// ContextOption configures context creation.
type ContextOption func(*contextConfig)

// WithContextLanguage sets the interpreter language for the context.
// Defaults to python. R interop is only probed for python contexts.
func WithContextLanguage(lang string) ContextOption {
	return func(c *contextConfig) {
		c.language = lang
	}
}

// WithContextRequestTimeout sets the request timeout for the context
// creation call.
func WithContextRequestTimeout(d time.Duration) ContextOption {
	return func(c *contextConfig) {
		c.requestTimeout = d
	}
}
