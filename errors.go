package sharky

import (
	"errors"
	"fmt"
)

// Exit codes reported by ExitCode.
const (
	ExitOK           = 0
	ExitConfig       = 3
	ExitFatal        = 4
	ExitReaderFailed = 5
)

// Worker roles.
const (
	RoleWriter = "writer"
	RoleReader = "reader"
)

var (
	// ErrInvalidConfig is returned for configurations that cannot run.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WorkerError reports the failure of one pipeline worker.
//
// The original underlying error can be accessed via errors.Unwrap.
type WorkerError struct {
	Role string
	Err  error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s worker: %v", e.Role, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// StatusError is a non-zero exit status reported by a worker.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("exited with status %d", e.Status)
}

// ExitCode maps an error returned by New or Pipeline.Run to a process exit
// code: ExitConfig for configuration errors, ExitReaderFailed when the
// reader worker failed, ExitFatal for everything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrInvalidConfig) {
		return ExitConfig
	}
	var we *WorkerError
	if errors.As(err, &we) && we.Role == RoleReader {
		return ExitReaderFailed
	}
	return ExitFatal
}
