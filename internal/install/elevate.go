package install

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/hadespm/hades/internal/models"
	"github.com/sirupsen/logrus"
)

// Elevator acquires superuser privileges before a privileged action
type Elevator interface {
	EnsureElevated() error
}

// NoElevation is used when privileged actions are not required,
// e.g. when downloading and extracting into user-owned directories.
type NoElevation struct{}

// EnsureElevated implements Elevator
func (NoElevation) EnsureElevated() error { return nil }

// SudoElevator re-executes the current command through sudo when the process
// is not running as root. A successful re-exec replaces the process, so the
// privileged action continues in the new image.
type SudoElevator struct {
	geteuid  func() int
	lookPath func(string) (string, error)
	exec     func(argv0 string, argv []string, envv []string) error
	args     []string
}

// NewSudoElevator creates an Elevator re-running os.Args under sudo
func NewSudoElevator() *SudoElevator {
	return &SudoElevator{
		geteuid:  os.Geteuid,
		lookPath: exec.LookPath,
		exec:     syscall.Exec,
		args:     os.Args,
	}
}

// EnsureElevated implements Elevator
func (e *SudoElevator) EnsureElevated() error {
	if e.geteuid() == 0 {
		return nil
	}

	sudo, err := e.lookPath("sudo")
	if err != nil {
		return &models.HadesError{
			Type: models.ErrElevation,
			Err:  fmt.Errorf("root privileges required and sudo is unavailable: %w", err),
		}
	}

	self, err := os.Executable()
	if err != nil {
		return &models.HadesError{Type: models.ErrElevation, Err: err}
	}

	argv := append([]string{"sudo", "--", self}, e.args[1:]...)
	logrus.Debugf("Re-executing with sudo: %v", argv)

	err = e.exec(sudo, argv, os.Environ())
	return &models.HadesError{
		Type: models.ErrElevation,
		Err:  fmt.Errorf("re-executing with sudo: %w", err),
	}
}
