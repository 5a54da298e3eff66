package emulatorapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"go.uber.org/zap"
)

// seed creates the scripted operations from configuration. Seeds that
// already exist are skipped so restarts stay idempotent.
func (a *App) seed(ctx context.Context) error {
	for _, entry := range a.cfg.Seed {
		args, err := seedToArgs(entry)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", entry.ID, err)
		}

		res, err := a.operationService.CreateOperation(ctx, args)
		if errors.Is(err, opdomain.ErrOperationAlreadyExists) {
			a.log.Debug("seed operation already exists", zap.String("id", entry.ID))
			continue
		}
		if err != nil {
			return fmt.Errorf("cannot seed operation %q: %w", entry.ID, err)
		}

		a.log.Info("seeded operation",
			zap.String("operation", string(res.Operation.Name)),
			zap.Duration("due_in", entry.DueIn),
		)
	}

	return nil
}

func seedToArgs(entry SeedOperation) (*opdomain.CreateOperationArgs, error) {
	args := &opdomain.CreateOperationArgs{
		ID:    entry.ID,
		DueIn: entry.DueIn,
	}

	if entry.Metadata != "" {
		if !json.Valid([]byte(entry.Metadata)) {
			return nil, errors.New("metadata is not valid json")
		}
		args.Metadata = json.RawMessage(entry.Metadata)
	}

	if entry.ErrorMessage != "" || entry.ErrorCode != 0 {
		args.Outcome.Error = &opdomain.OperationError{
			Code:    entry.ErrorCode,
			Message: entry.ErrorMessage,
		}
		return args, nil
	}

	if entry.Response != "" {
		if !json.Valid([]byte(entry.Response)) {
			return nil, errors.New("response is not valid json")
		}
		args.Outcome.Response = json.RawMessage(entry.Response)
	}

	return args, nil
}
