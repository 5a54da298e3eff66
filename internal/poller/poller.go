// Package poller blocks on a remote long-running operation until it reaches
// a terminal state. The lookup is supplied by the caller, so the same loop
// serves a gRPC client and a storage-backed service.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/googleapis/gax-go/v2"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
)

// GetFunc fetches the current snapshot of a named operation.
type GetFunc func(ctx context.Context, name opdomain.OperationName) (*opdomain.Operation, error)

// SleepFunc pauses between polls. It must return early with the context
// error when ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

const DefaultInterval = 2 * time.Second

type Options struct {
	// Interval between polls. Zero means DefaultInterval.
	Interval time.Duration

	// Multiplier grows the interval after each poll when > 1. The interval
	// never exceeds MaxInterval (which defaults to Interval).
	Multiplier  float64
	MaxInterval time.Duration

	// MaxWait bounds the total time spent waiting. Zero waits indefinitely.
	MaxWait time.Duration

	// Message is display text for the caller. The poller never interprets
	// it; it is handed to OnPoll as-is.
	Message string

	// OnPoll, when set, observes every snapshot the poller fetches.
	OnPoll func(op *opdomain.Operation, message string)

	// Sleep overrides the pause primitive. Nil means gax.Sleep.
	Sleep SleepFunc
}

// Poll fetches the operation until Done, returning the terminal snapshot.
// A terminal error payload surfaces as *OperationFailedError, a failed
// lookup as *TransportError (never retried), an exhausted MaxWait as
// ErrDeadlineExceeded and context cancellation as ErrCancelled. Polls are
// strictly sequential; cancellation and deadline are observed at iteration
// boundaries.
func Poll(ctx context.Context, name opdomain.OperationName, get GetFunc, opts Options) (*opdomain.Operation, error) {
	if _, err := opdomain.ParseOperationName(string(name)); err != nil {
		return nil, err
	}
	if get == nil {
		return nil, fmt.Errorf("%w: get function is required", opdomain.ErrInvalidArgument)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxInterval := opts.MaxInterval
	if maxInterval <= 0 {
		maxInterval = interval
	}
	multiplier := opts.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = gax.Sleep
	}

	var waited time.Duration
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if opts.MaxWait > 0 && waited >= opts.MaxWait {
			return nil, fmt.Errorf("%w after %s", ErrDeadlineExceeded, opts.MaxWait)
		}

		op, err := get(ctx, name)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		if opts.OnPoll != nil {
			opts.OnPoll(op, opts.Message)
		}
		if op != nil && op.Done {
			if op.Error != nil {
				return nil, &OperationFailedError{
					Name:    name,
					Code:    op.Error.Code,
					Message: op.Error.Message,
				}
			}
			return op, nil
		}

		pause := interval
		if opts.MaxWait > 0 {
			if remaining := opts.MaxWait - waited; pause > remaining {
				pause = remaining
			}
		}
		if err := sleep(ctx, pause); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		waited += pause

		if multiplier > 1 {
			interval = min(time.Duration(float64(interval)*multiplier), maxInterval)
		}
	}
}
