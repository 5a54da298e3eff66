package opapi_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	opapi "github.com/longrunio/lro/internal/transport/grpc/operations"
	"github.com/longrunio/lro/internal/transport/grpc/operations/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

func wantCode(code codes.Code) assert.ErrorAssertionFunc {
	return func(t assert.TestingT, err error, i ...interface{}) bool {
		stat, ok := status.FromError(err)
		return assert.True(t, ok) && assert.Equal(t, code, stat.Code())
	}
}

func TestServer_GetOperation(t *testing.T) {
	t.Parallel()

	type fields struct {
		setupOperationService func(m *mocks.OperationService)
	}

	type args struct {
		ctx context.Context
		req *longrunningpb.GetOperationRequest
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    assert.ValueAssertionFunc
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name: "invalid name",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.GetOperationRequest{Name: "jobs/123"},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.InvalidArgument),
		},
		{
			name: "operation not found",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("GetOperation", mock.Anything, mock.Anything).
						Return((*opdomain.GetOperationResult)(nil), opdomain.ErrOperationNotFound)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.GetOperationRequest{Name: "operations/123"},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.NotFound),
		},
		{
			name: "running operation",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("GetOperation", mock.Anything, &opdomain.GetOperationArgs{Name: "operations/123"}).
						Return(&opdomain.GetOperationResult{
							Operation: &opdomain.Operation{Name: "operations/123"},
						}, nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.GetOperationRequest{Name: "operations/123"},
			},
			want: func(tt assert.TestingT, got interface{}, i ...interface{}) bool {
				op, ok := got.(*longrunningpb.Operation)
				return assert.True(t, ok) &&
					assert.Equal(t, "operations/123", op.GetName()) &&
					assert.False(t, op.GetDone())
			},
			wantErr: assert.NoError,
		},
		{
			name: "failed operation carries status",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("GetOperation", mock.Anything, mock.Anything).
						Return(&opdomain.GetOperationResult{
							Operation: &opdomain.Operation{
								Name:  "operations/123",
								Done:  true,
								Error: &opdomain.OperationError{Code: 13, Message: "backend exploded"},
							},
						}, nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.GetOperationRequest{Name: "operations/123"},
			},
			want: func(tt assert.TestingT, got interface{}, i ...interface{}) bool {
				op, ok := got.(*longrunningpb.Operation)
				return assert.True(t, ok) &&
					assert.True(t, op.GetDone()) &&
					assert.EqualValues(t, 13, op.GetError().GetCode()) &&
					assert.Equal(t, "backend exploded", op.GetError().GetMessage())
			},
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockOperationService := mocks.NewOperationService(t)
			tt.fields.setupOperationService(mockOperationService)

			server := opapi.NewServer(mockOperationService)
			resp, err := server.GetOperation(tt.args.ctx, tt.args.req)

			tt.want(t, resp)
			tt.wantErr(t, err)

			mockOperationService.AssertExpectations(t)
		})
	}
}

func TestServer_ListOperations(t *testing.T) {
	t.Parallel()

	type fields struct {
		setupOperationService func(m *mocks.OperationService)
	}

	type args struct {
		ctx context.Context
		req *longrunningpb.ListOperationsRequest
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    assert.ValueAssertionFunc
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name: "bad page token",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("ListOperations", mock.Anything, mock.Anything).
						Return((*opdomain.ListOperationsResult)(nil), opdomain.ErrInvalidPageToken)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.ListOperationsRequest{PageToken: "garbage"},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.InvalidArgument),
		},
		{
			name: "page with token",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("ListOperations", mock.Anything, &opdomain.ListOperationsArgs{
						Filter:   "done=false",
						PageSize: 2,
					}).Return(&opdomain.ListOperationsResult{
						Operations: []*opdomain.Operation{
							{Name: "operations/a"},
							{Name: "operations/b"},
						},
						NextPageToken: "next",
					}, nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.ListOperationsRequest{Filter: "done=false", PageSize: 2},
			},
			want: func(tt assert.TestingT, got interface{}, i ...interface{}) bool {
				resp, ok := got.(*longrunningpb.ListOperationsResponse)
				return assert.True(t, ok) &&
					assert.Len(t, resp.GetOperations(), 2) &&
					assert.Equal(t, "operations/a", resp.GetOperations()[0].GetName()) &&
					assert.Equal(t, "next", resp.GetNextPageToken())
			},
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockOperationService := mocks.NewOperationService(t)
			tt.fields.setupOperationService(mockOperationService)

			server := opapi.NewServer(mockOperationService)
			resp, err := server.ListOperations(tt.args.ctx, tt.args.req)

			tt.want(t, resp)
			tt.wantErr(t, err)

			mockOperationService.AssertExpectations(t)
		})
	}
}

func TestServer_CancelOperation(t *testing.T) {
	t.Parallel()

	type fields struct {
		setupOperationService func(m *mocks.OperationService)
	}

	type args struct {
		ctx context.Context
		req *longrunningpb.CancelOperationRequest
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    assert.ValueAssertionFunc
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name: "empty name",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.CancelOperationRequest{Name: ""},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.InvalidArgument),
		},
		{
			name: "already done",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("CancelOperation", mock.Anything, mock.Anything).
						Return(opdomain.ErrOperationAlreadyDone)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.CancelOperationRequest{Name: "operations/123"},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.FailedPrecondition),
		},
		{
			name: "operation canceled",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("CancelOperation", mock.Anything, mock.Anything).Return(nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.CancelOperationRequest{Name: "operations/123"},
			},
			want:    assert.NotNil,
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockOperationService := mocks.NewOperationService(t)
			tt.fields.setupOperationService(mockOperationService)

			server := opapi.NewServer(mockOperationService)
			resp, err := server.CancelOperation(tt.args.ctx, tt.args.req)

			tt.want(t, resp)
			tt.wantErr(t, err)

			mockOperationService.AssertExpectations(t)
		})
	}
}

func TestServer_DeleteOperation(t *testing.T) {
	t.Parallel()

	type fields struct {
		setupOperationService func(m *mocks.OperationService)
	}

	type args struct {
		ctx context.Context
		req *longrunningpb.DeleteOperationRequest
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    assert.ValueAssertionFunc
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name: "empty name",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.DeleteOperationRequest{Name: ""},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.InvalidArgument),
		},
		{
			name: "operation not found",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("DeleteOperation", mock.Anything, mock.Anything).
						Return(opdomain.ErrOperationNotFound)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.DeleteOperationRequest{Name: "operations/123"},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.NotFound),
		},
		{
			name: "operation deleted",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("DeleteOperation", mock.Anything, &opdomain.DeleteOperationArgs{Name: "operations/123"}).
						Return(nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.DeleteOperationRequest{Name: "operations/123"},
			},
			want:    assert.NotNil,
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockOperationService := mocks.NewOperationService(t)
			tt.fields.setupOperationService(mockOperationService)

			server := opapi.NewServer(mockOperationService)
			resp, err := server.DeleteOperation(tt.args.ctx, tt.args.req)

			tt.want(t, resp)
			tt.wantErr(t, err)

			mockOperationService.AssertExpectations(t)
		})
	}
}

func TestServer_WaitOperation(t *testing.T) {
	t.Parallel()

	type fields struct {
		setupOperationService func(m *mocks.OperationService)
	}

	type args struct {
		ctx context.Context
		req *longrunningpb.WaitOperationRequest
	}

	tests := []struct {
		name    string
		fields  fields
		args    args
		want    assert.ValueAssertionFunc
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name: "invalid name",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.WaitOperationRequest{Name: ""},
			},
			want:    assert.Nil,
			wantErr: wantCode(codes.InvalidArgument),
		},
		{
			name: "timeout forwarded",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("WaitOperation", mock.Anything, &opdomain.WaitOperationArgs{
						Name:    "operations/123",
						Timeout: 30 * time.Second,
					}).Return(&opdomain.WaitOperationResult{
						Operation: &opdomain.Operation{Name: "operations/123", Done: true},
					}, nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.WaitOperationRequest{
					Name:    "operations/123",
					Timeout: durationpb.New(30 * time.Second),
				},
			},
			want: func(tt assert.TestingT, got interface{}, i ...interface{}) bool {
				op, ok := got.(*longrunningpb.Operation)
				return assert.True(t, ok) && assert.True(t, op.GetDone())
			},
			wantErr: assert.NoError,
		},
		{
			name: "still running after timeout",
			fields: fields{
				setupOperationService: func(m *mocks.OperationService) {
					m.On("WaitOperation", mock.Anything, mock.Anything).
						Return(&opdomain.WaitOperationResult{
							Operation: &opdomain.Operation{Name: "operations/123"},
						}, nil)
				},
			},
			args: args{
				ctx: context.Background(),
				req: &longrunningpb.WaitOperationRequest{Name: "operations/123"},
			},
			want: func(tt assert.TestingT, got interface{}, i ...interface{}) bool {
				op, ok := got.(*longrunningpb.Operation)
				return assert.True(t, ok) && assert.False(t, op.GetDone())
			},
			wantErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockOperationService := mocks.NewOperationService(t)
			tt.fields.setupOperationService(mockOperationService)

			server := opapi.NewServer(mockOperationService)
			resp, err := server.WaitOperation(tt.args.ctx, tt.args.req)

			tt.want(t, resp)
			tt.wantErr(t, err)

			mockOperationService.AssertExpectations(t)
		})
	}
}
