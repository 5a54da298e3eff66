package opsrv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/longrunio/lro/internal/poller"
)

//go:generate mockery --name OperationRepository --output ./mocks --outpkg mocks --with-expecter --filename operation_repository.go
type OperationRepository interface {
	opdomain.OperationGetter
	opdomain.OperationLister
	opdomain.OperationCanceler
	opdomain.OperationDeleter
	opdomain.OperationCreator
	opdomain.OperationCompleter
}

//go:generate mockery --name SchedulePublisher --output ./mocks --outpkg mocks --with-expecter --filename schedule_publisher.go
type SchedulePublisher interface {
	opdomain.SchedulePublisher
}

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultWaitTimeout  = time.Minute
	maxWaitTimeout      = 10 * time.Minute

	defaultPageSize = 50
	maxPageSize     = 1000
)

type Service struct {
	operationRepository OperationRepository
	schedulePublisher   SchedulePublisher

	pollInterval time.Duration
}

func NewService(
	operationRepository OperationRepository,
	schedulePublisher SchedulePublisher,
) (*Service, error) {
	if operationRepository == nil {
		return nil, errors.New("operation repository is required")
	}
	if schedulePublisher == nil {
		return nil, errors.New("schedule publisher is required")
	}

	return &Service{
		operationRepository: operationRepository,
		schedulePublisher:   schedulePublisher,
		pollInterval:        defaultPollInterval,
	}, nil
}

func (s *Service) CreateOperation(ctx context.Context, args *opdomain.CreateOperationArgs) (*opdomain.CreateOperationResult, error) {
	if args == nil {
		return nil, fmt.Errorf("%w: create arguments are required", opdomain.ErrInvalidArgument)
	}
	if args.Outcome.Error != nil && len(args.Outcome.Response) > 0 {
		return nil, fmt.Errorf("%w: outcome cannot carry both response and error", opdomain.ErrInvalidArgument)
	}

	if args.ID == "" {
		uid, err := uuid.NewV7()
		if err != nil {
			return nil, errors.New("cannot generate id for new operation")
		}
		args.ID = uid.String()
	}

	res, err := s.operationRepository.CreateOperation(ctx, args)
	if err != nil {
		return nil, err
	}

	if args.DueIn > 0 {
		msg := &opdomain.ScheduleMessage{
			Name:    res.Operation.Name,
			DueAt:   time.Now().UTC().Add(args.DueIn),
			Outcome: args.Outcome,
		}
		if err := s.schedulePublisher.PublishSchedule(ctx, msg); err != nil {
			return nil, fmt.Errorf("operation %s created but completion was not scheduled: %w", res.Operation.Name, err)
		}
	}

	return res, nil
}

func (s *Service) GetOperation(ctx context.Context, args *opdomain.GetOperationArgs) (*opdomain.GetOperationResult, error) {
	if args == nil || args.Name == "" {
		return nil, opdomain.ErrInvalidOperationName
	}

	return s.operationRepository.GetOperation(ctx, args)
}

func (s *Service) ListOperations(ctx context.Context, args *opdomain.ListOperationsArgs) (*opdomain.ListOperationsResult, error) {
	if args == nil {
		args = &opdomain.ListOperationsArgs{}
	}

	if args.PageSize < 1 {
		args.PageSize = defaultPageSize
	}
	args.PageSize = min(args.PageSize, maxPageSize)

	return s.operationRepository.ListOperations(ctx, args)
}

func (s *Service) CancelOperation(ctx context.Context, args *opdomain.CancelOperationArgs) error {
	if args == nil || args.Name == "" {
		return opdomain.ErrInvalidOperationName
	}

	return s.operationRepository.CancelOperation(ctx, args)
}

func (s *Service) DeleteOperation(ctx context.Context, args *opdomain.DeleteOperationArgs) error {
	if args == nil || args.Name == "" {
		return opdomain.ErrInvalidOperationName
	}

	return s.operationRepository.DeleteOperation(ctx, args)
}

func (s *Service) CompleteOperation(ctx context.Context, args *opdomain.CompleteOperationArgs) (*opdomain.CompleteOperationResult, error) {
	if args == nil || args.Name == "" {
		return nil, opdomain.ErrInvalidOperationName
	}

	return s.operationRepository.CompleteOperation(ctx, args)
}

// WaitOperation blocks until the operation reaches a terminal state or the
// timeout expires, returning the latest snapshot either way. Best effort,
// matching google.longrunning semantics: expiry is not an RPC error, the
// caller inspects Done on the returned snapshot.
func (s *Service) WaitOperation(ctx context.Context, args *opdomain.WaitOperationArgs) (*opdomain.WaitOperationResult, error) {
	if args == nil || args.Name == "" {
		return nil, opdomain.ErrInvalidOperationName
	}

	timeout := args.Timeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	timeout = min(timeout, maxWaitTimeout)

	var latest *opdomain.Operation
	get := func(ctx context.Context, name opdomain.OperationName) (*opdomain.Operation, error) {
		res, err := s.operationRepository.GetOperation(ctx, &opdomain.GetOperationArgs{Name: name})
		if err != nil {
			return nil, err
		}
		return res.Operation, nil
	}

	op, err := poller.Poll(ctx, args.Name, get, poller.Options{
		Interval: s.pollInterval,
		MaxWait:  timeout,
		OnPoll:   func(op *opdomain.Operation, _ string) { latest = op },
	})

	switch {
	case err == nil:
		return &opdomain.WaitOperationResult{Operation: op}, nil
	case errors.Is(err, poller.ErrDeadlineExceeded):
		if latest == nil {
			return nil, err
		}
		return &opdomain.WaitOperationResult{Operation: latest}, nil
	default:
		// A terminal error payload is still a successful wait: the caller
		// receives the snapshot and reads the error from it.
		var failed *poller.OperationFailedError
		if errors.As(err, &failed) && latest != nil {
			return &opdomain.WaitOperationResult{Operation: latest}, nil
		}
		var transport *poller.TransportError
		if errors.As(err, &transport) {
			return nil, transport.Unwrap()
		}
		return nil, err
	}
}
