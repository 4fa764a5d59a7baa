package dbrx

import (
	"context"
	"fmt"
	"strings"
)

// PackageKind selects the package ecosystem a presence probe or install
// targets.
type PackageKind string

// Package ecosystems understood by PackageInstalled and InstallPackage.
const (
	PackagePython PackageKind = "python"
	PackageR      PackageKind = "r"
)

func probeSnippet(pkg string, kind PackageKind) (string, error) {
	switch kind {
	case PackagePython:
		return pythonImportProbe(pkg), nil
	case PackageR:
		return rInstalledProbe(pkg), nil
	default:
		return "", fmt.Errorf("%w: unknown package kind %q", ErrInvalidArgument, kind)
	}
}

func installSnippet(pkg string, kind PackageKind) (string, error) {
	switch kind {
	case PackagePython:
		return pipInstallSnippet(pkg), nil
	case PackageR:
		return rInstallSnippet(pkg), nil
	default:
		return "", fmt.Errorf("%w: unknown package kind %q", ErrInvalidArgument, kind)
	}
}

// PackageInstalled reports whether a package is available in the active
// execution context. Python packages are probed with an import attempt, R
// packages with an installed.packages() lookup through the rpy2 bridge.
//
// An error-typed probe result returns a *PackageCheckError. A probe whose
// output is not one of the expected sentinels returns an error wrapping
// ErrUnexpectedResponse.
func (c *Cluster) PackageInstalled(ctx context.Context, pkg string, kind PackageKind) (bool, error) {
	if err := validatePackageName(pkg); err != nil {
		return false, err
	}
	snippet, err := probeSnippet(pkg, kind)
	if err != nil {
		return false, err
	}

	c.logger.Info("checking package presence", "package", pkg, "kind", string(kind))

	info, err := c.Execute(ctx, snippet)
	if err != nil {
		return false, err
	}

	installed, err := classifyProbeResult(pkg, kind, info)
	if err != nil {
		return false, err
	}

	if installed {
		c.logger.Info("package present", "package", pkg, "kind", string(kind))
	} else {
		c.logger.Info("package missing", "package", pkg, "kind", string(kind))
	}
	return installed, nil
}

// classifyProbeResult maps a probe's result payload to a presence boolean.
// Probes print a literal sentinel, so anything beyond the four known
// sentinels is an error.
func classifyProbeResult(pkg string, kind PackageKind, info *CommandInfo) (bool, error) {
	if info == nil || info.Results == nil {
		return false, fmt.Errorf("%w: probe for package %q returned no results", ErrPackageCheck, pkg)
	}

	switch info.Results.ResultType {
	case ResultTypeText:
		switch strings.TrimSpace(info.Results.Text()) {
		case "Success", "TRUE":
			return true, nil
		case "Failure", "FALSE":
			return false, nil
		default:
			return false, fmt.Errorf("%w: unrecognized probe output for package %q", ErrUnexpectedResponse, pkg)
		}
	case ResultTypeError:
		return false, &PackageCheckError{
			Package: pkg,
			Kind:    kind,
			Summary: info.Results.Summary,
			Cause:   info.Results.Cause,
		}
	default:
		return false, fmt.Errorf("%w: probe for package %q returned a %s result", ErrUnexpectedResponse, pkg, info.Results.ResultType)
	}
}

// InstallPackage makes sure a package is available in the active execution
// context, installing it when the presence probe reports it missing. The
// call is idempotent: an already-present package submits no install command.
//
// The install command's own output is not inspected. Success is decided by
// a second presence probe; a package still missing afterwards returns an
// error wrapping ErrInstallFailed.
func (c *Cluster) InstallPackage(ctx context.Context, pkg string, kind PackageKind) error {
	installed, err := c.PackageInstalled(ctx, pkg, kind)
	if err != nil {
		return err
	}
	if installed {
		c.logger.Info("package already installed", "package", pkg, "kind", string(kind))
		return nil
	}

	snippet, err := installSnippet(pkg, kind)
	if err != nil {
		return err
	}

	c.logger.Info("installing package", "package", pkg, "kind", string(kind))

	if _, err := c.Execute(ctx, snippet); err != nil {
		return err
	}

	installed, err = c.PackageInstalled(ctx, pkg, kind)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%w: %s package %q still missing after install", ErrInstallFailed, kind, pkg)
	}

	c.logger.Info("package installed", "package", pkg, "kind", string(kind))
	return nil
}
