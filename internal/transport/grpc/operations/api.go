package opapi

import (
	"context"
	"errors"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	grpctr "github.com/longrunio/lro/internal/transport/grpc"
	sliceutils "github.com/longrunio/lro/pkg/slices"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

//go:generate mockery --name OperationService --output ./mocks --outpkg mocks --with-expecter --filename operation_service.go
type OperationService interface {
	opdomain.OperationCanceler
	opdomain.OperationDeleter
	opdomain.OperationGetter
	opdomain.OperationLister
	opdomain.OperationWaiter
}

type Server struct {
	longrunningpb.UnimplementedOperationsServer
	operationService OperationService
}

func NewServer(operationService OperationService) *Server {
	return &Server{operationService: operationService}
}

func NewRegistration(operationService OperationService) grpctr.ServiceRegistration {
	return func(s *grpc.Server) {
		longrunningpb.RegisterOperationsServer(s, NewServer(operationService))
	}
}

func (s *Server) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error) {
	name, err := opdomain.ParseOperationName(req.GetName())
	if err != nil {
		return nil, errorToProto(err)
	}

	res, err := s.operationService.GetOperation(ctx, &opdomain.GetOperationArgs{Name: name})
	if err != nil {
		return nil, errorToProto(err)
	}
	if res == nil || res.Operation == nil {
		return nil, status.Error(codes.Internal, "missing operation in result")
	}

	return renderOperation(res.Operation)
}

func (s *Server) ListOperations(ctx context.Context, req *longrunningpb.ListOperationsRequest) (*longrunningpb.ListOperationsResponse, error) {
	res, err := s.operationService.ListOperations(ctx, &opdomain.ListOperationsArgs{
		Filter:    req.GetFilter(),
		PageSize:  req.GetPageSize(),
		PageToken: req.GetPageToken(),
	})
	if err != nil {
		return nil, errorToProto(err)
	}
	if res == nil {
		return nil, status.Error(codes.Internal, "missing result")
	}

	converted, err := sliceutils.MapErr(res.Operations, renderOperation)
	if err != nil {
		return nil, err
	}

	return &longrunningpb.ListOperationsResponse{
		Operations:    converted,
		NextPageToken: res.NextPageToken,
	}, nil
}

func (s *Server) CancelOperation(ctx context.Context, req *longrunningpb.CancelOperationRequest) (*emptypb.Empty, error) {
	name, err := opdomain.ParseOperationName(req.GetName())
	if err != nil {
		return nil, errorToProto(err)
	}

	if err := s.operationService.CancelOperation(ctx, &opdomain.CancelOperationArgs{Name: name}); err != nil {
		return nil, errorToProto(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) DeleteOperation(ctx context.Context, req *longrunningpb.DeleteOperationRequest) (*emptypb.Empty, error) {
	name, err := opdomain.ParseOperationName(req.GetName())
	if err != nil {
		return nil, errorToProto(err)
	}

	if err := s.operationService.DeleteOperation(ctx, &opdomain.DeleteOperationArgs{Name: name}); err != nil {
		return nil, errorToProto(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) WaitOperation(ctx context.Context, req *longrunningpb.WaitOperationRequest) (*longrunningpb.Operation, error) {
	name, err := opdomain.ParseOperationName(req.GetName())
	if err != nil {
		return nil, errorToProto(err)
	}

	args := &opdomain.WaitOperationArgs{Name: name}
	if req.GetTimeout() != nil {
		args.Timeout = req.GetTimeout().AsDuration()
	}

	res, err := s.operationService.WaitOperation(ctx, args)
	if err != nil {
		return nil, errorToProto(err)
	}
	if res == nil || res.Operation == nil {
		return nil, status.Error(codes.Internal, "missing operation in result")
	}

	return renderOperation(res.Operation)
}

func renderOperation(op *opdomain.Operation) (*longrunningpb.Operation, error) {
	msg, err := OperationToProto(op)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}

func errorToProto(err error) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	switch {
	case errors.Is(err, opdomain.ErrOperationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, opdomain.ErrInvalidOperationName),
		errors.Is(err, opdomain.ErrInvalidArgument),
		errors.Is(err, opdomain.ErrInvalidPageToken):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, opdomain.ErrOperationAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, opdomain.ErrOperationAlreadyDone):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
