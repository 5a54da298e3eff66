package opdomain

import (
	"context"
	"encoding/json"
	"time"
)

type OperationGetter interface {
	GetOperation(ctx context.Context, args *GetOperationArgs) (*GetOperationResult, error)
}

type GetOperationArgs struct {
	Name OperationName
}

type GetOperationResult struct {
	Operation *Operation
}

type OperationLister interface {
	ListOperations(ctx context.Context, args *ListOperationsArgs) (*ListOperationsResult, error)
}

type ListOperationsArgs struct {
	Filter    string
	PageSize  int32
	PageToken string
}

type ListOperationsResult struct {
	Operations    []*Operation
	NextPageToken string
}

type OperationCanceler interface {
	CancelOperation(ctx context.Context, args *CancelOperationArgs) error
}

type CancelOperationArgs struct {
	Name OperationName
}

type OperationDeleter interface {
	DeleteOperation(ctx context.Context, args *DeleteOperationArgs) error
}

type DeleteOperationArgs struct {
	Name OperationName
}

type OperationWaiter interface {
	WaitOperation(ctx context.Context, args *WaitOperationArgs) (*WaitOperationResult, error)
}

type WaitOperationArgs struct {
	Name    OperationName
	Timeout time.Duration
}

type WaitOperationResult struct {
	Operation *Operation
}

type OperationCreator interface {
	CreateOperation(ctx context.Context, args *CreateOperationArgs) (*CreateOperationResult, error)
}

type CreateOperationArgs struct {
	// ID is optional; a fresh one is generated when empty.
	ID       string
	Metadata json.RawMessage

	// DueIn schedules automatic completion with Outcome after the delay.
	// Zero means the operation stays running until completed explicitly.
	DueIn   time.Duration
	Outcome Outcome
}

type CreateOperationResult struct {
	Operation *Operation
}

type OperationCompleter interface {
	CompleteOperation(ctx context.Context, args *CompleteOperationArgs) (*CompleteOperationResult, error)
}

type CompleteOperationArgs struct {
	Name    OperationName
	Outcome Outcome
}

type CompleteOperationResult struct {
	Operation *Operation
}

type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, msg *ScheduleMessage) error
}
