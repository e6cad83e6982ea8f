package install

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hadespm/hades/internal/archive"
	"github.com/hadespm/hades/internal/models"
	"github.com/sirupsen/logrus"
)

// Installer queries a downloaded package's dependencies and unpacks it
type Installer interface {
	Requires(ctx context.Context, path string) ([]string, error)
	Extract(ctx context.Context, path, dir string) error
}

// extractPipeline unpacks the package passed as $1 into the working directory
const extractPipeline = `rpm2cpio "$1" | cpio -idm`

// Tools installs with the host's rpm, rpm2cpio and cpio binaries
type Tools struct {
	Runner Runner
}

var _ Installer = Tools{}

// Requires runs `rpm -qp --requires` on path. A non-zero exit leaves the
// dependency list unknown and is reported as an error.
func (t Tools) Requires(ctx context.Context, path string) ([]string, error) {
	res, err := t.Runner.Run(ctx, "", "rpm", "-qp", "--requires", path)
	if err != nil {
		return nil, &models.HadesError{
			Type:    models.ErrDependencyQuery,
			Package: path,
			Err:     fmt.Errorf("running rpm: %w", err),
		}
	}
	if res.ExitCode != 0 {
		return nil, &models.HadesError{
			Type:    models.ErrDependencyQuery,
			Package: path,
			Err:     fmt.Errorf("rpm exited with status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)),
		}
	}
	return parseLines(res.Stdout), nil
}

// Extract runs the rpm2cpio | cpio pipeline inside dir
func (t Tools) Extract(ctx context.Context, path, dir string) error {
	res, err := t.Runner.Run(ctx, dir, "sh", "-c", extractPipeline, "sh", path)
	if err != nil {
		return &models.HadesError{
			Type:    models.ErrInstall,
			Package: path,
			Err:     fmt.Errorf("running extraction pipeline: %w", err),
		}
	}
	if res.ExitCode != 0 {
		return &models.HadesError{
			Type:    models.ErrInstall,
			Package: path,
			Err:     fmt.Errorf("extraction pipeline exited with status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)),
		}
	}
	return nil
}

// ToolsAvailable reports whether every binary Tools needs is on PATH
func ToolsAvailable() bool {
	for _, bin := range []string{"rpm", "rpm2cpio", "cpio"} {
		if _, err := exec.LookPath(bin); err != nil {
			logrus.Debugf("%s not found on PATH", bin)
			return false
		}
	}
	return true
}

// Native installs without external tools: dependencies come from the package
// header and the payload is unpacked in-process.
type Native struct{}

var _ Installer = Native{}

// Requires returns the REQUIRENAME entries of the package header
func (Native) Requires(_ context.Context, path string) ([]string, error) {
	meta, err := archive.Inspect(path)
	if err != nil {
		return nil, &models.HadesError{Type: models.ErrDependencyQuery, Package: path, Err: err}
	}
	return meta.Requires, nil
}

// Extract unpacks the payload under dir
func (Native) Extract(_ context.Context, path, dir string) error {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		files, err := archive.Files(path)
		if err != nil {
			logrus.Warnf("Failed to list payload of %s: %v", path, err)
		}
		for _, f := range files {
			logrus.Debugf("Unpacking %s", f)
		}
	}
	return archive.ExtractPayload(path, dir)
}

// parseLines splits command output into trimmed, non-empty lines
func parseLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
