package poller

import (
	"errors"
	"fmt"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
)

var (
	ErrDeadlineExceeded = errors.New("deadline exceeded while waiting for operation")
	ErrCancelled        = errors.New("operation wait cancelled")
)

// OperationFailedError reports that the remote operation reached its
// terminal state with an error payload. Code and Message are carried
// verbatim for display.
type OperationFailedError struct {
	Name    opdomain.OperationName
	Code    int32
	Message string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation %s failed: %s (code %d)", e.Name, e.Message, e.Code)
}

// TransportError reports that the lookup itself failed: the state of the
// operation is unknown, as opposed to the operation having failed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot check operation state: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
