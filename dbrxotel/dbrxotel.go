// Package dbrxotel wraps a dbrx execution service so every operation runs
// inside an OpenTelemetry span.
//
// The wrapper is transparent: it forwards every call unchanged, starts a
// span named after the operation, and records the error on the span when
// the call fails. Hook it up with any trace.TracerProvider:
//
//	cluster, err := dbrx.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	traced := dbrxotel.New(cluster, otel.GetTracerProvider())
//	info, err := traced.Execute(ctx, "print(1 + 1)")
package dbrxotel

import (
	"context"

	dbrx "github.com/xerpa-ai/dbrx-go"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this instrumentation library on emitted spans.
const tracerName = "github.com/xerpa-ai/dbrx-go/dbrxotel"

// Client wraps a dbrx.ExecutionService with tracing.
type Client struct {
	svc    dbrx.ExecutionService
	tracer trace.Tracer
}

// New wraps svc with spans from the given tracer provider.
func New(svc dbrx.ExecutionService, tp trace.TracerProvider) *Client {
	return &Client{
		svc:    svc,
		tracer: tp.Tracer(tracerName),
	}
}

// CreateContext creates a remote execution context inside a span. The span
// covers the whole call, including the rpy2 probe when one runs.
func (c *Client) CreateContext(ctx context.Context, name string, opts ...dbrx.ContextOption) (*dbrx.ExecContext, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.CreateContext")
	defer span.End()

	ec, err := c.svc.CreateContext(ctx, name, opts...)
	if err != nil {
		span.RecordError(err)
	}
	return ec, err
}

// AttachContext adopts an existing remote context inside a span.
func (c *Client) AttachContext(ctx context.Context, contextID string) (*dbrx.ExecContext, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.AttachContext")
	defer span.End()

	ec, err := c.svc.AttachContext(ctx, contextID)
	if err != nil {
		span.RecordError(err)
	}
	return ec, err
}

// DestroyContext destroys the active context inside a span.
func (c *Client) DestroyContext(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "dbrx.DestroyContext")
	defer span.End()

	err := c.svc.DestroyContext(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// ContextStatus reports the state of the active context inside a span.
func (c *Client) ContextStatus(ctx context.Context) (*dbrx.ContextInfo, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.ContextStatus")
	defer span.End()

	info, err := c.svc.ContextStatus(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return info, err
}

// ActiveContext returns the active context. No span is started; the call
// never leaves the process.
func (c *Client) ActiveContext() *dbrx.ExecContext {
	return c.svc.ActiveContext()
}

// Execute runs code to completion inside a span. The span covers the whole
// submit/poll cycle.
func (c *Client) Execute(ctx context.Context, code string, opts ...dbrx.ExecOption) (*dbrx.CommandInfo, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.Execute")
	defer span.End()

	info, err := c.svc.Execute(ctx, code, opts...)
	if err != nil {
		span.RecordError(err)
	}
	return info, err
}

// Submit submits code inside a span. The span covers only the submission;
// polling through the returned handle is not traced.
func (c *Client) Submit(ctx context.Context, code string, opts ...dbrx.ExecOption) (*dbrx.CommandHandle, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.Submit")
	defer span.End()

	handle, err := c.svc.Submit(ctx, code, opts...)
	if err != nil {
		span.RecordError(err)
	}
	return handle, err
}

// RunR executes R source inside a span.
func (c *Client) RunR(ctx context.Context, code string, opts ...dbrx.ExecOption) (*dbrx.CommandInfo, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.RunR")
	defer span.End()

	info, err := c.svc.RunR(ctx, code, opts...)
	if err != nil {
		span.RecordError(err)
	}
	return info, err
}

// PackageInstalled probes for a package inside a span.
func (c *Client) PackageInstalled(ctx context.Context, pkg string, kind dbrx.PackageKind) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "dbrx.PackageInstalled")
	defer span.End()

	installed, err := c.svc.PackageInstalled(ctx, pkg, kind)
	if err != nil {
		span.RecordError(err)
	}
	return installed, err
}

// InstallPackage installs a package inside a span. The span covers the
// probe, the install command, and the re-probe.
func (c *Client) InstallPackage(ctx context.Context, pkg string, kind dbrx.PackageKind) error {
	ctx, span := c.tracer.Start(ctx, "dbrx.InstallPackage")
	defer span.End()

	err := c.svc.InstallPackage(ctx, pkg, kind)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Compile-time interface compliance check.
var _ dbrx.ExecutionService = (*Client)(nil)
