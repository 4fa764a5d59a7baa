package dbrx

import (
	"context"
	"fmt"
)

// RInteropMode controls how a cluster decides whether R code can run in an
// execution context. R execution rides on the rpy2 bridge inside the remote
// Python interpreter, so it is only meaningful when the bridge is present.
type RInteropMode string

const (
	// RInteropCheck probes each new context for the rpy2 package and
	// enables R interop only when the probe reports it present.
	RInteropCheck RInteropMode = "check"

	// RInteropOn enables R interop without probing.
	RInteropOn RInteropMode = "on"

	// RInteropOff disables R interop without probing.
	RInteropOff RInteropMode = "off"
)

func (m RInteropMode) valid() bool {
	switch m {
	case RInteropCheck, RInteropOn, RInteropOff:
		return true
	}
	return false
}

// resolveRInterop fixes the R interop flag for a freshly created or attached
// context. In check mode a failed probe disables interop for the context but
// never fails context creation.
func (c *Cluster) resolveRInterop(ctx context.Context, ec *ExecContext) {
	switch c.rInterop {
	case RInteropOn:
		ec.rAvailable = true
	case RInteropOff:
		ec.rAvailable = false
	default:
		if ec.Language != LanguagePython {
			c.logger.Debug("skipping rpy2 probe for non-python context", "contextId", ec.ID, "language", ec.Language)
			return
		}
		c.logger.Info("probing context for rpy2", "contextId", ec.ID)
		installed, err := c.PackageInstalled(ctx, rpy2Package, PackagePython)
		if err != nil {
			c.logger.Warn("rpy2 probe failed, R interop disabled for this context", "contextId", ec.ID, "error", err)
			return
		}
		ec.rAvailable = installed
	}
}

// RunR executes R source in the active context through the rpy2 bridge and
// returns the command's status payload, like Execute. The code is embedded
// in a Python triple-quoted string, so it must not contain three consecutive
// single quotes.
//
// RunR returns ErrContextNotSet when no context is active and
// ErrRInteropDisabled when the context's R interop flag resolved to false.
func (c *Cluster) RunR(ctx context.Context, code string, opts ...ExecOption) (*CommandInfo, error) {
	ec := c.ActiveContext()
	if ec == nil {
		c.logger.Error("context is not set, cannot run R code")
		return nil, ErrContextNotSet
	}
	if !ec.RAvailable() {
		c.logger.Error("R interop is disabled for this context", "contextId", ec.ID)
		return nil, fmt.Errorf("%w: rpy2 is not available in context %s", ErrRInteropDisabled, ec.ID)
	}
	if err := validateRSource(code); err != nil {
		return nil, err
	}

	return c.Execute(ctx, rEvalSnippet(code), opts...)
}
