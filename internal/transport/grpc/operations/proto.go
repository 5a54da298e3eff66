package opapi

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// OperationToProto renders a stored operation as the wire message. JSON
// payloads travel as google.protobuf.Struct packed into Any, so generic
// clients can unpack them without our descriptors.
func OperationToProto(op *opdomain.Operation) (*longrunningpb.Operation, error) {
	if op == nil {
		return nil, nil
	}

	out := &longrunningpb.Operation{
		Name: string(op.Name),
		Done: op.Done,
	}

	if len(op.Metadata) > 0 {
		metadata, err := jsonToAny(op.Metadata)
		if err != nil {
			return nil, fmt.Errorf("cannot encode metadata of %s: %w", op.Name, err)
		}
		out.Metadata = metadata
	}

	switch {
	case op.Error != nil:
		out.Result = &longrunningpb.Operation_Error{
			Error: &statuspb.Status{
				Code:    op.Error.Code,
				Message: op.Error.Message,
			},
		}
	case op.Done:
		response, err := jsonToAny(op.Response)
		if err != nil {
			return nil, fmt.Errorf("cannot encode response of %s: %w", op.Name, err)
		}
		out.Result = &longrunningpb.Operation_Response{Response: response}
	}

	return out, nil
}

// OperationFromProto is the inverse of OperationToProto. The CLI uses it
// to turn polled wire messages back into the domain shape.
func OperationFromProto(msg *longrunningpb.Operation) (*opdomain.Operation, error) {
	if msg == nil {
		return nil, nil
	}

	op := &opdomain.Operation{
		Name: opdomain.OperationName(msg.GetName()),
		Done: msg.GetDone(),
	}

	if msg.GetMetadata() != nil {
		metadata, err := anyToJSON(msg.GetMetadata())
		if err != nil {
			return nil, fmt.Errorf("cannot decode metadata of %s: %w", msg.GetName(), err)
		}
		op.Metadata = metadata
	}

	if e := msg.GetError(); e != nil {
		op.Error = &opdomain.OperationError{Code: e.GetCode(), Message: e.GetMessage()}
		return op, nil
	}

	if r := msg.GetResponse(); r != nil {
		response, err := anyToJSON(r)
		if err != nil {
			return nil, fmt.Errorf("cannot decode response of %s: %w", msg.GetName(), err)
		}
		op.Response = response
	}

	return op, nil
}

func jsonToAny(raw json.RawMessage) (*anypb.Any, error) {
	payload := &structpb.Struct{}
	if len(raw) > 0 {
		if err := protojson.Unmarshal(raw, payload); err != nil {
			return nil, err
		}
	}
	return anypb.New(payload)
}

func anyToJSON(packed *anypb.Any) (json.RawMessage, error) {
	payload := &structpb.Struct{}
	if err := packed.UnmarshalTo(payload); err != nil {
		return nil, err
	}
	return protojson.Marshal(payload)
}
