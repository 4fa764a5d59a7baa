// Package dbrx provides a Go client for remote code execution on Databricks
// clusters through the Command Execution API (1.2).
//
// The client creates a server-managed execution context on a running
// cluster, submits Python or R code into it, and polls the command until it
// reaches a terminal status. All heavy lifting (scheduling, execution,
// compute management) happens on the cluster; this package is the control
// plane plumbing around it.
//
// # Getting Started
//
// Create a cluster client, open an execution context, and run code:
//
//	import "github.com/xerpa-ai/dbrx-go"
//
//	cluster, err := dbrx.New(
//	    dbrx.WithHost("https://example.cloud.databricks.com"),
//	    dbrx.WithToken("dapi..."),
//	    dbrx.WithClusterID("0825-123456-abcdef12"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if _, err := cluster.CreateContext(ctx, ""); err != nil {
//	    log.Fatal(err)
//	}
//	defer cluster.DestroyContext(ctx)
//
//	info, err := cluster.Execute(ctx, "print(1 + 1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Text()) // "2"
//
// # Execution Contexts
//
// A context holds interpreter state on the cluster. Variables and imports
// persist across Execute calls within the same context. A Cluster tracks at
// most one active context; create a second Cluster value for concurrent
// contexts.
//
//	execCtx, err := cluster.CreateContext(ctx, "etl-session",
//	    dbrx.WithContextLanguage(dbrx.LanguagePython))
//
// An existing remote context can be adopted by identifier:
//
//	execCtx, err := cluster.AttachContext(ctx, "8782164667301063901")
//
// # Running Code
//
// Execute blocks until the command reaches a terminal status. For manual
// control over polling, Submit returns a handle:
//
//	handle, err := cluster.Submit(ctx, longRunningJob)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... do other work ...
//	info, err := handle.Wait(ctx)
//
// Tabular results (for example from SQL or display calls) decode into rows:
//
//	info, err := cluster.Execute(ctx, "display(df)")
//	table, err := info.Results.Table()
//
// # R Interop
//
// When a context is created the client can probe it for the rpy2 bridge and
// enable R execution on top of the Python interpreter:
//
//	info, err := cluster.RunR(ctx, `sum(c(1, 2, 3))`)
//	if errors.Is(err, dbrx.ErrRInteropDisabled) {
//	    // rpy2 is not installed in the context
//	}
//
// The probe behavior is controlled with WithRInterop: RInteropCheck (the
// default) probes each new context, RInteropOn and RInteropOff skip the
// probe and force the flag.
//
// # Package Management
//
// The client can check for and install packages inside the context:
//
//	installed, err := cluster.PackageInstalled(ctx, "numpy", dbrx.PackagePython)
//	err = cluster.InstallPackage(ctx, "jsonlite", dbrx.PackageR)
//
// InstallPackage is idempotent: a package that is already present submits no
// install command.
//
// # Error Handling
//
// The client provides typed errors for common conditions:
//
//	info, err := cluster.Execute(ctx, code)
//	if errors.Is(err, dbrx.ErrTimeout) {
//	    // the submit/poll cycle exceeded the execution timeout
//	}
//	if errors.Is(err, dbrx.ErrCommandFailed) {
//	    var cmdErr *dbrx.CommandFailedError
//	    errors.As(err, &cmdErr)
//	    fmt.Println(cmdErr.Status) // "Cancelled", "Error", ...
//	}
//
// A command that raises inside the interpreter still finishes: the error
// arrives as an error-typed result payload, not as a Go error:
//
//	info, err := cluster.Execute(ctx, "1/0")
//	if info.Results.ResultType == dbrx.ResultTypeError {
//	    fmt.Println(info.Results.Summary) // "ZeroDivisionError: division by zero"
//	}
//
// # Configuration
//
// The client can be configured via options or environment variables:
//
//   - DBRX_API_TOKEN: bearer token for authentication
//   - DBRX_HOST: workspace URL, for example https://example.cloud.databricks.com
//   - DBRX_CLUSTER_ID: identifier of the target cluster
//
// Or use functional options:
//
//	cluster, err := dbrx.New(
//	    dbrx.WithToken("dapi..."),
//	    dbrx.WithPollInterval(2 * time.Second),
//	    dbrx.WithExecTimeout(30 * time.Minute),
//	    dbrx.WithRInterop(dbrx.RInteropOff),
//	)
package dbrx
