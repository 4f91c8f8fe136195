package contract

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

// ErrRepositoryNotFound is returned when the given path holds no Git repository.
var ErrRepositoryNotFound = errors.New("repository not found")

// ProcessError describes a git subprocess that did not finish successfully.
type ProcessError struct {
	Command  string // Short form of the command, e.g. "git log"
	ExitCode int    // Exit status, -1 when the process was killed by a signal
	Signal   string // Name of the terminating signal, if any
	Stderr   string
}

func (e *ProcessError) Error() string {
	if e.Signaled() {
		return fmt.Sprintf("%s was killed by signal %s", e.Command, e.Signal)
	}
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Signaled reports whether the process was terminated by a signal.
func (e *ProcessError) Signaled() bool {
	return e.Signal != ""
}

// newProcessError converts an *exec.ExitError into a ProcessError.
func newProcessError(command string, exitErr *exec.ExitError, stderr string) *ProcessError {
	pe := &ProcessError{
		Command:  command,
		ExitCode: exitErr.ExitCode(),
		Stderr:   strings.TrimSpace(stderr),
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		pe.Signal = ws.Signal().String()
	}
	return pe
}
