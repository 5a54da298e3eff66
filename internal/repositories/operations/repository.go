package oprepo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/nats-io/nats.go/jetstream"
)

// KeyValue is the slice of the JetStream KV surface the repository uses.
type KeyValue interface {
	jetstream.KeyValue
}

// ResultStore keeps response payloads that are too large to inline into the
// KV entry.
type ResultStore interface {
	SaveResult(ctx context.Context, name opdomain.OperationName, payload []byte) (string, error)
	OpenResult(ctx context.Context, objectKey string) ([]byte, error)
	DeleteResult(ctx context.Context, objectKey string) error
}

const defaultInlineLimit = 64 * 1024

type Repository struct {
	kv          KeyValue
	results     ResultStore
	inlineLimit int
}

// NewRepository stores operation snapshots in a JetStream KV bucket.
// results may be nil, in which case every response stays inline.
func NewRepository(kv KeyValue, results ResultStore, inlineLimit int) (*Repository, error) {
	if kv == nil {
		return nil, errors.New("key-value bucket is required")
	}
	if inlineLimit <= 0 {
		inlineLimit = defaultInlineLimit
	}
	return &Repository{kv: kv, results: results, inlineLimit: inlineLimit}, nil
}

func (r *Repository) CreateOperation(ctx context.Context, args *opdomain.CreateOperationArgs) (*opdomain.CreateOperationResult, error) {
	if args == nil || args.ID == "" {
		return nil, opdomain.ErrInvalidArgument
	}

	op := &opdomain.Operation{
		Name:      opdomain.OperationName("operations/" + args.ID),
		Metadata:  args.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	b, err := json.Marshal(toStored(op))
	if err != nil {
		return nil, err
	}

	if _, err := r.kv.Create(ctx, keyFromName(op.Name), b); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, opdomain.ErrOperationAlreadyExists
		}
		return nil, err
	}

	return &opdomain.CreateOperationResult{Operation: op}, nil
}

func (r *Repository) GetOperation(ctx context.Context, args *opdomain.GetOperationArgs) (*opdomain.GetOperationResult, error) {
	if args == nil || args.Name == "" {
		return nil, opdomain.ErrInvalidOperationName
	}
	if _, err := opdomain.ParseOperationName(string(args.Name)); err != nil {
		return nil, err
	}

	_, op, err := r.getEntry(ctx, args.Name)
	if err != nil {
		return nil, err
	}

	return &opdomain.GetOperationResult{Operation: op}, nil
}

func (r *Repository) ListOperations(ctx context.Context, args *opdomain.ListOperationsArgs) (*opdomain.ListOperationsResult, error) {
	if args == nil {
		return nil, opdomain.ErrInvalidArgument
	}

	pageSize := int(args.PageSize)
	if pageSize <= 0 {
		pageSize = 50
	}

	match, err := compileFilter(args.Filter)
	if err != nil {
		return nil, err
	}

	keys, err := r.listAllKeys(ctx)
	if err != nil {
		return nil, err
	}

	start, err := startIndexFromToken(keys, args.PageToken)
	if err != nil {
		return nil, err
	}

	operations := make([]*opdomain.Operation, 0, pageSize)
	nextToken := ""
	for i := start; i < len(keys); i++ {
		e, err := r.kv.Get(ctx, keys[i])
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, err
		}

		op, err := r.decode(ctx, e.Value())
		if err != nil {
			return nil, err
		}
		if !match(op) {
			continue
		}

		operations = append(operations, op)
		if len(operations) == pageSize {
			if i+1 < len(keys) {
				nextToken = keys[i]
			}
			break
		}
	}

	return &opdomain.ListOperationsResult{Operations: operations, NextPageToken: nextToken}, nil
}

func (r *Repository) DeleteOperation(ctx context.Context, args *opdomain.DeleteOperationArgs) error {
	if args == nil || args.Name == "" {
		return opdomain.ErrInvalidOperationName
	}
	if _, err := opdomain.ParseOperationName(string(args.Name)); err != nil {
		return err
	}

	entry, err := r.kv.Get(ctx, keyFromName(args.Name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return opdomain.ErrOperationNotFound
		}
		return err
	}

	var so storedOperation
	if err := json.Unmarshal(entry.Value(), &so); err != nil {
		return err
	}
	if so.ResponseObjectKey != "" && r.results != nil {
		_ = r.results.DeleteResult(ctx, so.ResponseObjectKey)
	}

	if err := r.kv.Delete(ctx, keyFromName(args.Name)); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return opdomain.ErrOperationNotFound
		}
		return err
	}
	return nil
}

// CancelOperation marks a running operation done with the canonical
// cancellation error payload (google.rpc.Code CANCELLED = 1). Cancelling a
// terminal operation fails with ErrOperationAlreadyDone.
func (r *Repository) CancelOperation(ctx context.Context, args *opdomain.CancelOperationArgs) error {
	if args == nil || args.Name == "" {
		return opdomain.ErrInvalidOperationName
	}
	if _, err := opdomain.ParseOperationName(string(args.Name)); err != nil {
		return err
	}

	entry, op, err := r.getEntry(ctx, args.Name)
	if err != nil {
		return err
	}
	if op.Done {
		return opdomain.ErrOperationAlreadyDone
	}

	op.Done = true
	op.Error = &opdomain.OperationError{Code: 1, Message: "operation cancelled by caller"}
	op.EndedAt = time.Now().UTC()

	return r.put(ctx, op, entry.Revision())
}

// CompleteOperation transitions a running operation to its terminal state.
func (r *Repository) CompleteOperation(ctx context.Context, args *opdomain.CompleteOperationArgs) (*opdomain.CompleteOperationResult, error) {
	if args == nil || args.Name == "" {
		return nil, opdomain.ErrInvalidOperationName
	}
	if args.Outcome.Error != nil && len(args.Outcome.Response) > 0 {
		return nil, opdomain.ErrInvalidArgument
	}

	entry, op, err := r.getEntry(ctx, args.Name)
	if err != nil {
		return nil, err
	}
	if op.Done {
		return nil, opdomain.ErrOperationAlreadyDone
	}

	op.Done = true
	op.Error = args.Outcome.Error
	op.Response = args.Outcome.Response
	op.EndedAt = time.Now().UTC()

	if err := r.put(ctx, op, entry.Revision()); err != nil {
		return nil, err
	}
	return &opdomain.CompleteOperationResult{Operation: op}, nil
}

func (r *Repository) getEntry(ctx context.Context, name opdomain.OperationName) (jetstream.KeyValueEntry, *opdomain.Operation, error) {
	entry, err := r.kv.Get(ctx, keyFromName(name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil, opdomain.ErrOperationNotFound
		}
		return nil, nil, err
	}

	op, err := r.decode(ctx, entry.Value())
	if err != nil {
		return nil, nil, err
	}
	return entry, op, nil
}

func (r *Repository) put(ctx context.Context, op *opdomain.Operation, revision uint64) error {
	so := toStored(op)

	if r.results != nil && len(op.Response) > r.inlineLimit {
		key, err := r.results.SaveResult(ctx, op.Name, op.Response)
		if err != nil {
			return err
		}
		so.Response = nil
		so.ResponseObjectKey = key
	}

	b, err := json.Marshal(so)
	if err != nil {
		return err
	}

	_, err = r.kv.Update(ctx, keyFromName(op.Name), b, revision)
	return err
}

func (r *Repository) decode(ctx context.Context, raw []byte) (*opdomain.Operation, error) {
	var so storedOperation
	if err := json.Unmarshal(raw, &so); err != nil {
		return nil, err
	}

	op, err := fromStored(&so)
	if err != nil {
		return nil, err
	}

	if so.ResponseObjectKey != "" {
		if r.results == nil {
			return nil, errors.New("operation has an offloaded response but no result store is configured")
		}
		payload, err := r.results.OpenResult(ctx, so.ResponseObjectKey)
		if err != nil {
			return nil, err
		}
		op.Response = payload
	}

	return op, nil
}

func (r *Repository) listAllKeys(ctx context.Context) ([]string, error) {
	lister, err := r.kv.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, 128)
	for k := range lister.Keys() {
		if strings.HasPrefix(k, keyPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// --- storage format ---

type storedOperation struct {
	Name              string                   `json:"name"`
	Done              bool                     `json:"done"`
	Error             *opdomain.OperationError `json:"error,omitempty"`
	Response          json.RawMessage          `json:"response,omitempty"`
	ResponseObjectKey string                   `json:"response_object_key,omitempty"`
	Metadata          json.RawMessage          `json:"metadata,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	EndedAt           time.Time                `json:"ended_at,omitempty"`
}

func toStored(op *opdomain.Operation) *storedOperation {
	return &storedOperation{
		Name:      string(op.Name),
		Done:      op.Done,
		Error:     op.Error,
		Response:  op.Response,
		Metadata:  op.Metadata,
		CreatedAt: op.CreatedAt,
		EndedAt:   op.EndedAt,
	}
}

func fromStored(so *storedOperation) (*opdomain.Operation, error) {
	if so == nil || so.Name == "" {
		return nil, opdomain.ErrInvalidArgument
	}
	name, err := opdomain.ParseOperationName(so.Name)
	if err != nil {
		return nil, err
	}
	return &opdomain.Operation{
		Name:      name,
		Done:      so.Done,
		Error:     so.Error,
		Response:  so.Response,
		Metadata:  so.Metadata,
		CreatedAt: so.CreatedAt,
		EndedAt:   so.EndedAt,
	}, nil
}

// --- keys + paging ---

const keyPrefix = "op."

// KV keys must be subject-like, so the resource name is base64url-encoded
// into a single token.
func keyFromName(name opdomain.OperationName) string {
	return keyPrefix + base64.RawURLEncoding.EncodeToString([]byte(name))
}

// The page token is the last key of the previous page.
func startIndexFromToken(sortedKeys []string, lastKey string) (int, error) {
	if lastKey == "" {
		return 0, nil
	}
	i := sort.SearchStrings(sortedKeys, lastKey)
	if i >= len(sortedKeys) || sortedKeys[i] != lastKey {
		return 0, opdomain.ErrInvalidPageToken
	}
	return i + 1, nil
}

// --- filtering ---

// compileFilter supports the "done=true" / "done=false" subset the CLI
// exposes. An empty filter matches everything.
func compileFilter(filter string) (func(*opdomain.Operation) bool, error) {
	switch strings.TrimSpace(filter) {
	case "":
		return func(*opdomain.Operation) bool { return true }, nil
	case "done=true":
		return func(op *opdomain.Operation) bool { return op.Done }, nil
	case "done=false":
		return func(op *opdomain.Operation) bool { return !op.Done }, nil
	default:
		return nil, opdomain.ErrInvalidArgument
	}
}
