package opcmd

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/longrunio/lro/internal/domains/references"
	opapi "github.com/longrunio/lro/internal/transport/grpc/operations"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

func dialEndpoint(ctx context.Context, addr string, tls bool, caFile string) (*grpc.ClientConn, error) {
	var opts []grpc.DialOption

	if tls {
		creds, err := credentials.NewClientTLSFromFile(caFile, "")
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	opts = append(opts, grpc.WithBlock())

	return grpc.DialContext(ctx, addr, opts...)
}

// resolveName turns a user-supplied identifier (full path, operations/<id>
// shorthand, or a bare id) into the relative name sent on the wire.
func resolveName(s, project, location string) (string, error) {
	ref, err := references.ParseOperation(s, references.Defaults{
		Project:  project,
		Location: location,
	})
	if err != nil {
		return "", err
	}
	return ref.RelativeName()
}

func printOperation(w io.Writer, msg *longrunningpb.Operation) error {
	op, err := opapi.OperationFromProto(msg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, formatOperation(op))
	return err
}

func formatOperation(op *opdomain.Operation) string {
	state := "RUNNING"
	detail := ""
	switch {
	case op.Error != nil:
		state = "FAILED"
		detail = fmt.Sprintf(", error_code=%d, error=%s", op.Error.Code, op.Error.Message)
	case op.Done:
		state = "DONE"
		if len(op.Response) > 0 {
			detail = fmt.Sprintf(", response=%s", op.Response)
		}
	}

	metadata := ""
	if len(op.Metadata) > 0 {
		metadata = fmt.Sprintf(", metadata=%s", op.Metadata)
	}

	return fmt.Sprintf("operation: name=%s, state=%s%s%s", op.Name, state, metadata, detail)
}
