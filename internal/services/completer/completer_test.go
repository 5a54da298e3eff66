package completersrv_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	completersrv "github.com/longrunio/lro/internal/services/completer"
	"github.com/longrunio/lro/internal/services/completer/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func encode(t *testing.T, msg opdomain.ScheduleMessage) []byte {
	t.Helper()

	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestCompleter_Handle(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("error: nil completer", func(t *testing.T) {
		c, err := completersrv.NewCompleter(nil, zap.NewNop())
		require.Error(t, err)
		require.Nil(t, c)
	})

	t.Run("ok: malformed payload is dropped", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, c.Handle(ctx, []byte("not json")))
	})

	t.Run("ok: message without name is dropped", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, c.Handle(ctx, encode(t, opdomain.ScheduleMessage{DueAt: base})))
	})

	t.Run("ok: sleeps until due then completes", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		var slept time.Duration
		c, err := completersrv.NewCompleter(ops, zap.NewNop(),
			completersrv.WithClock(func() time.Time { return base }),
			completersrv.WithSleep(func(_ context.Context, d time.Duration) error {
				slept += d
				return nil
			}),
		)
		require.NoError(t, err)

		msg := opdomain.ScheduleMessage{
			Name:    "operations/job-42",
			DueAt:   base.Add(3 * time.Second),
			Outcome: opdomain.Outcome{Response: json.RawMessage(`{"rows":1}`)},
		}

		ops.EXPECT().
			CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
				Name:    "operations/job-42",
				Outcome: msg.Outcome,
			}).
			Return(&opdomain.CompleteOperationResult{
				Operation: &opdomain.Operation{Name: "operations/job-42", Done: true},
			}, nil).
			Once()

		require.NoError(t, c.Handle(ctx, encode(t, msg)))
		require.Equal(t, 3*time.Second, slept)
	})

	t.Run("ok: past due completes without sleeping", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop(),
			completersrv.WithClock(func() time.Time { return base }),
			completersrv.WithSleep(func(context.Context, time.Duration) error {
				t.Fatal("sleep must not be called")
				return nil
			}),
		)
		require.NoError(t, err)

		msg := opdomain.ScheduleMessage{Name: "operations/job-42", DueAt: base.Add(-time.Second)}

		ops.EXPECT().
			CompleteOperation(ctx, &opdomain.CompleteOperationArgs{Name: "operations/job-42"}).
			Return(&opdomain.CompleteOperationResult{
				Operation: &opdomain.Operation{Name: "operations/job-42", Done: true},
			}, nil).
			Once()

		require.NoError(t, c.Handle(ctx, encode(t, msg)))
	})

	t.Run("ok: already done acknowledges", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop(),
			completersrv.WithClock(func() time.Time { return base }),
		)
		require.NoError(t, err)

		msg := opdomain.ScheduleMessage{Name: "operations/job-42", DueAt: base}

		ops.EXPECT().
			CompleteOperation(ctx, &opdomain.CompleteOperationArgs{Name: "operations/job-42"}).
			Return((*opdomain.CompleteOperationResult)(nil), opdomain.ErrOperationAlreadyDone).
			Once()

		require.NoError(t, c.Handle(ctx, encode(t, msg)))
	})

	t.Run("error: storage failure requeues", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop(),
			completersrv.WithClock(func() time.Time { return base }),
		)
		require.NoError(t, err)

		msg := opdomain.ScheduleMessage{Name: "operations/job-42", DueAt: base}
		wantErr := errors.New("kv unavailable")

		ops.EXPECT().
			CompleteOperation(ctx, &opdomain.CompleteOperationArgs{Name: "operations/job-42"}).
			Return((*opdomain.CompleteOperationResult)(nil), wantErr).
			Once()

		require.ErrorIs(t, c.Handle(ctx, encode(t, msg)), wantErr)
	})

	t.Run("error: canceled while sleeping", func(t *testing.T) {
		ops := mocks.NewOperationCompleter(t)

		c, err := completersrv.NewCompleter(ops, zap.NewNop(),
			completersrv.WithClock(func() time.Time { return base }),
			completersrv.WithSleep(func(ctx context.Context, _ time.Duration) error {
				return context.Canceled
			}),
		)
		require.NoError(t, err)

		msg := opdomain.ScheduleMessage{Name: "operations/job-42", DueAt: base.Add(time.Hour)}

		require.ErrorIs(t, c.Handle(ctx, encode(t, msg)), context.Canceled)
	})
}
