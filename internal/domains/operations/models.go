package opdomain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type OperationName string

// ParseOperationName accepts any resource name that contains an
// "operations/" segment with a non-empty trailing id, e.g. "operations/123"
// or "projects/p/locations/l/operations/123".
func ParseOperationName(s string) (OperationName, error) {
	const segment = "operations/"

	i := strings.Index(s, segment)
	if i < 0 || len(s) == i+len(segment) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperationName, s)
	}
	if i > 0 && s[i-1] != '/' {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperationName, s)
	}
	return OperationName(s), nil
}

// ID returns the trailing segment after the last "operations/".
func (n OperationName) ID() string {
	const segment = "operations/"

	i := strings.LastIndex(string(n), segment)
	if i < 0 {
		return string(n)
	}
	return string(n)[i+len(segment):]
}

// OperationError carries the remote failure payload verbatim. Code follows
// google.rpc.Code numbering.
type OperationError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

type Operation struct {
	Name      OperationName   `json:"name"`
	Done      bool            `json:"done"`
	Error     *OperationError `json:"error,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	EndedAt   time.Time       `json:"ended_at,omitempty"`
}

// Validate enforces the terminal-state invariant: a running operation has
// neither error nor response; a done operation has at most one of them
// (an empty response is tolerated).
func (op *Operation) Validate() error {
	if op == nil {
		return ErrInvalidArgument
	}
	if !op.Done {
		if op.Error != nil || len(op.Response) > 0 {
			return fmt.Errorf("%w: running operation carries a terminal payload", ErrInvalidArgument)
		}
		return nil
	}
	if op.Error != nil && len(op.Response) > 0 {
		return fmt.Errorf("%w: done operation carries both error and response", ErrInvalidArgument)
	}
	return nil
}

// Outcome is the terminal state an operation will settle into: at most one
// of Response or Error set.
type Outcome struct {
	Response json.RawMessage `json:"response,omitempty"`
	Error    *OperationError `json:"error,omitempty"`
}

// ScheduleMessage asks the completer to drive an operation to its terminal
// state once DueAt has passed.
type ScheduleMessage struct {
	Name    OperationName `json:"name"`
	DueAt   time.Time     `json:"due_at"`
	Outcome Outcome       `json:"outcome"`
}
