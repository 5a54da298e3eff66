package oprepo

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	bucket  string
	key     string
	val     []byte
	rev     uint64
	created time.Time
	delta   uint64
	op      jetstream.KeyValueOp
}

func (e *fakeEntry) Bucket() string                  { return e.bucket }
func (e *fakeEntry) Key() string                     { return e.key }
func (e *fakeEntry) Value() []byte                   { return e.val }
func (e *fakeEntry) Revision() uint64                { return e.rev }
func (e *fakeEntry) Created() time.Time              { return e.created }
func (e *fakeEntry) Delta() uint64                   { return e.delta }
func (e *fakeEntry) Operation() jetstream.KeyValueOp { return e.op }

type fakeLister struct {
	ch chan string
}

func (l *fakeLister) Keys() <-chan string { return l.ch }
func (l *fakeLister) Stop() error         { return nil }

type fakeKV struct {
	jetstream.KeyValue

	// hooks
	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error

	// storage
	nextRev uint64
	items   map[string]*fakeEntry
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		nextRev: 1,
		items:   map[string]*fakeEntry{},
	}
}

func (kv *fakeKV) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	if kv.getErr != nil {
		return nil, kv.getErr
	}
	e, ok := kv.items[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return e, nil
}

func (kv *fakeKV) Create(ctx context.Context, key string, value []byte) (uint64, error) {
	if kv.createErr != nil {
		return 0, kv.createErr
	}
	if _, ok := kv.items[key]; ok {
		return 0, jetstream.ErrKeyExists
	}
	rev := kv.nextRev
	kv.nextRev++

	kv.items[key] = &fakeEntry{
		key:     key,
		val:     append([]byte(nil), value...),
		rev:     rev,
		created: time.Now().UTC(),
		op:      jetstream.KeyValuePut,
	}
	return rev, nil
}

func (kv *fakeKV) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if kv.updateErr != nil {
		return 0, kv.updateErr
	}
	e, ok := kv.items[key]
	if !ok {
		return 0, jetstream.ErrKeyNotFound
	}
	if e.rev != revision {
		return 0, errors.New("wrong last sequence")
	}
	rev := kv.nextRev
	kv.nextRev++
	e.val = append([]byte(nil), value...)
	e.rev = rev
	return rev, nil
}

func (kv *fakeKV) Delete(ctx context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if kv.deleteErr != nil {
		return kv.deleteErr
	}
	if _, ok := kv.items[key]; !ok {
		return jetstream.ErrKeyNotFound
	}
	delete(kv.items, key)
	return nil
}

func (kv *fakeKV) ListKeys(ctx context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	if kv.listErr != nil {
		return nil, kv.listErr
	}
	keys := make([]string, 0, len(kv.items))
	for k := range kv.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ch := make(chan string, len(keys))
	for _, k := range keys {
		ch <- k
	}
	close(ch)
	return &fakeLister{ch: ch}, nil
}

type fakeResults struct {
	saved   map[string][]byte
	saveErr error
	openErr error
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: map[string][]byte{}}
}

func (f *fakeResults) SaveResult(ctx context.Context, name opdomain.OperationName, payload []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	key := name.ID() + ".json"
	f.saved[key] = append([]byte(nil), payload...)
	return key, nil
}

func (f *fakeResults) OpenResult(ctx context.Context, objectKey string) ([]byte, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	b, ok := f.saved[objectKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}

func (f *fakeResults) DeleteResult(ctx context.Context, objectKey string) error {
	delete(f.saved, objectKey)
	return nil
}

func mustCreate(t *testing.T, r *Repository, id string) *opdomain.Operation {
	t.Helper()

	res, err := r.CreateOperation(context.Background(), &opdomain.CreateOperationArgs{
		ID:       id,
		Metadata: json.RawMessage(`{"verb":"create"}`),
	})
	require.NoError(t, err)
	return res.Operation
}

func TestRepository_CreateOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		res, err := r.CreateOperation(ctx, &opdomain.CreateOperationArgs{ID: "123"})
		require.NoError(t, err)
		require.Equal(t, opdomain.OperationName("operations/123"), res.Operation.Name)
		require.False(t, res.Operation.Done)
	})

	t.Run("error: missing id", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		_, err = r.CreateOperation(ctx, &opdomain.CreateOperationArgs{})
		require.ErrorIs(t, err, opdomain.ErrInvalidArgument)
	})

	t.Run("error: duplicate id", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		mustCreate(t, r, "123")
		_, err = r.CreateOperation(ctx, &opdomain.CreateOperationArgs{ID: "123"})
		require.ErrorIs(t, err, opdomain.ErrOperationAlreadyExists)
	})
}

func TestRepository_GetOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		res, err := r.GetOperation(ctx, &opdomain.GetOperationArgs{Name: created.Name})
		require.NoError(t, err)
		require.Equal(t, created.Name, res.Operation.Name)
		require.JSONEq(t, `{"verb":"create"}`, string(res.Operation.Metadata))
	})

	t.Run("error: not found", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		_, err = r.GetOperation(ctx, &opdomain.GetOperationArgs{Name: "operations/missing"})
		require.ErrorIs(t, err, opdomain.ErrOperationNotFound)
	})

	t.Run("error: invalid name", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		_, err = r.GetOperation(ctx, &opdomain.GetOperationArgs{Name: "bad/123"})
		require.ErrorIs(t, err, opdomain.ErrInvalidOperationName)
	})
}

func TestRepository_CancelOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: running operation gets cancellation payload", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		require.NoError(t, r.CancelOperation(ctx, &opdomain.CancelOperationArgs{Name: created.Name}))

		res, err := r.GetOperation(ctx, &opdomain.GetOperationArgs{Name: created.Name})
		require.NoError(t, err)
		require.True(t, res.Operation.Done)
		require.NotNil(t, res.Operation.Error)
		require.Equal(t, int32(1), res.Operation.Error.Code)
		require.False(t, res.Operation.EndedAt.IsZero())
	})

	t.Run("error: already terminal", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		require.NoError(t, r.CancelOperation(ctx, &opdomain.CancelOperationArgs{Name: created.Name}))
		err = r.CancelOperation(ctx, &opdomain.CancelOperationArgs{Name: created.Name})
		require.ErrorIs(t, err, opdomain.ErrOperationAlreadyDone)
	})

	t.Run("error: not found", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)

		err = r.CancelOperation(ctx, &opdomain.CancelOperationArgs{Name: "operations/missing"})
		require.ErrorIs(t, err, opdomain.ErrOperationNotFound)
	})
}

func TestRepository_CompleteOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: success outcome", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		res, err := r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    created.Name,
			Outcome: opdomain.Outcome{Response: json.RawMessage(`{"id":"x"}`)},
		})
		require.NoError(t, err)
		require.True(t, res.Operation.Done)
		require.Nil(t, res.Operation.Error)
		require.JSONEq(t, `{"id":"x"}`, string(res.Operation.Response))
	})

	t.Run("ok: failure outcome", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		res, err := r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    created.Name,
			Outcome: opdomain.Outcome{Error: &opdomain.OperationError{Code: 5, Message: "not found"}},
		})
		require.NoError(t, err)
		require.True(t, res.Operation.Done)
		require.Equal(t, "not found", res.Operation.Error.Message)
		require.Empty(t, res.Operation.Response)
	})

	t.Run("error: both response and error", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name: created.Name,
			Outcome: opdomain.Outcome{
				Response: json.RawMessage(`{}`),
				Error:    &opdomain.OperationError{Code: 13},
			},
		})
		require.ErrorIs(t, err, opdomain.ErrInvalidArgument)
	})

	t.Run("error: already terminal", func(t *testing.T) {
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{Name: created.Name})
		require.NoError(t, err)

		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{Name: created.Name})
		require.ErrorIs(t, err, opdomain.ErrOperationAlreadyDone)
	})
}

func TestRepository_ResponseOffloading(t *testing.T) {
	ctx := context.Background()

	t.Run("large response goes to the result store and is re-inlined on read", func(t *testing.T) {
		results := newFakeResults()
		r, err := NewRepository(newFakeKV(), results, 8)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		payload := json.RawMessage(`{"rows":["aaaaaaaaaaaaaaaaaaaaaaaa"]}`)
		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    created.Name,
			Outcome: opdomain.Outcome{Response: payload},
		})
		require.NoError(t, err)
		require.Contains(t, results.saved, "123.json")

		res, err := r.GetOperation(ctx, &opdomain.GetOperationArgs{Name: created.Name})
		require.NoError(t, err)
		require.JSONEq(t, string(payload), string(res.Operation.Response))
	})

	t.Run("delete removes the offloaded object", func(t *testing.T) {
		results := newFakeResults()
		r, err := NewRepository(newFakeKV(), results, 8)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    created.Name,
			Outcome: opdomain.Outcome{Response: json.RawMessage(`{"big":"aaaaaaaaaaaaaaaa"}`)},
		})
		require.NoError(t, err)

		require.NoError(t, r.DeleteOperation(ctx, &opdomain.DeleteOperationArgs{Name: created.Name}))
		require.NotContains(t, results.saved, "123.json")
	})

	t.Run("small response stays inline", func(t *testing.T) {
		results := newFakeResults()
		r, err := NewRepository(newFakeKV(), results, 1024)
		require.NoError(t, err)
		created := mustCreate(t, r, "123")

		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    created.Name,
			Outcome: opdomain.Outcome{Response: json.RawMessage(`{"id":"x"}`)},
		})
		require.NoError(t, err)
		require.Empty(t, results.saved)
	})
}

func TestRepository_ListOperations(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Repository {
		t.Helper()
		r, err := NewRepository(newFakeKV(), nil, 0)
		require.NoError(t, err)
		for _, id := range []string{"a1", "b2", "c3", "d4"} {
			mustCreate(t, r, id)
		}
		_, err = r.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
			Name:    "operations/a1",
			Outcome: opdomain.Outcome{Response: json.RawMessage(`{}`)},
		})
		require.NoError(t, err)
		return r
	}

	t.Run("ok: pages through all operations", func(t *testing.T) {
		r := seed(t)

		var names []string
		token := ""
		for {
			res, err := r.ListOperations(ctx, &opdomain.ListOperationsArgs{PageSize: 3, PageToken: token})
			require.NoError(t, err)
			for _, op := range res.Operations {
				names = append(names, string(op.Name))
			}
			token = res.NextPageToken
			if token == "" {
				break
			}
		}
		require.ElementsMatch(t, []string{
			"operations/a1", "operations/b2", "operations/c3", "operations/d4",
		}, names)
	})

	t.Run("ok: done filter", func(t *testing.T) {
		r := seed(t)

		res, err := r.ListOperations(ctx, &opdomain.ListOperationsArgs{Filter: "done=true", PageSize: 10})
		require.NoError(t, err)
		require.Len(t, res.Operations, 1)
		require.Equal(t, opdomain.OperationName("operations/a1"), res.Operations[0].Name)

		res, err = r.ListOperations(ctx, &opdomain.ListOperationsArgs{Filter: "done=false", PageSize: 10})
		require.NoError(t, err)
		require.Len(t, res.Operations, 3)
	})

	t.Run("error: unknown filter", func(t *testing.T) {
		r := seed(t)

		_, err := r.ListOperations(ctx, &opdomain.ListOperationsArgs{Filter: "state=RUNNING"})
		require.ErrorIs(t, err, opdomain.ErrInvalidArgument)
	})

	t.Run("error: bogus page token", func(t *testing.T) {
		r := seed(t)

		_, err := r.ListOperations(ctx, &opdomain.ListOperationsArgs{PageSize: 2, PageToken: "nope"})
		require.ErrorIs(t, err, opdomain.ErrInvalidPageToken)
	})
}
