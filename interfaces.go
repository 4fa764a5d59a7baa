package dbrx

import "context"

// ContextManager provides execution context lifecycle operations.
type ContextManager interface {
	// CreateContext creates a remote execution context and makes it the
	// active context.
	CreateContext(ctx context.Context, name string, opts ...ContextOption) (*ExecContext, error)

	// AttachContext adopts an existing remote context as the active context.
	AttachContext(ctx context.Context, contextID string) (*ExecContext, error)

	// DestroyContext destroys the active context.
	DestroyContext(ctx context.Context) error

	// ContextStatus reports the server-side state of the active context.
	ContextStatus(ctx context.Context) (*ContextInfo, error)

	// ActiveContext returns the active context, or nil.
	ActiveContext() *ExecContext
}

// CommandRunner provides code execution operations.
type CommandRunner interface {
	// Execute submits code and waits for a terminal status.
	Execute(ctx context.Context, code string, opts ...ExecOption) (*CommandInfo, error)

	// Submit submits code and returns a handle without waiting.
	Submit(ctx context.Context, code string, opts ...ExecOption) (*CommandHandle, error)

	// RunR executes R source through the rpy2 bridge.
	RunR(ctx context.Context, code string, opts ...ExecOption) (*CommandInfo, error)
}

// PackageManager provides package presence and installation operations.
type PackageManager interface {
	// PackageInstalled reports whether a package is available in the
	// active context.
	PackageInstalled(ctx context.Context, pkg string, kind PackageKind) (bool, error)

	// InstallPackage installs a package unless it is already present.
	InstallPackage(ctx context.Context, pkg string, kind PackageKind) error
}

// ExecutionService combines all remote execution operations.
type ExecutionService interface {
	ContextManager
	CommandRunner
	PackageManager
}

// Compile-time interface compliance checks.
var (
	_ ContextManager   = (*Cluster)(nil)
	_ CommandRunner    = (*Cluster)(nil)
	_ PackageManager   = (*Cluster)(nil)
	_ ExecutionService = (*Cluster)(nil)
)
