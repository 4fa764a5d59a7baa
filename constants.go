package dbrx

import "time"

const (
	// Version is the SDK version.
	Version = "0.1.0"

	// DefaultAPIVersion is the control-plane API version the client speaks.
	DefaultAPIVersion = "1.2"

	// MinAPIVersion is the oldest API version with execution-context
	// support. Contexts and command runs do not exist before 1.2.
	MinAPIVersion = "1.2"

	// DefaultPollInterval is the default delay between command status polls.
	DefaultPollInterval = 1 * time.Second

	// DefaultRequestTimeout is the default timeout for a single HTTP request.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultExecTimeout is the default bound on a whole submit/poll cycle.
	// A command still running after this long is cancelled best-effort and
	// reported as a timeout.
	DefaultExecTimeout = 10 * time.Minute
)

// Language constants for execution contexts.
const (
	LanguagePython = "python"
	LanguageScala  = "scala"
	LanguageSQL    = "sql"
)

// rpy2Package is the Python package bridging R execution into a
// Python-hosted context. Its presence gates RunR.
const rpy2Package = "rpy2"
