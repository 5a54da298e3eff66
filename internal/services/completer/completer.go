package completersrv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/googleapis/gax-go/v2"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	natscons "github.com/longrunio/lro/internal/transport/nats/consumer"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	completerSchedulesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lro",
		Subsystem: "completer",
		Name:      "schedules_processed_total",
		Help:      "Total number of schedule messages processed",
	}, []string{"outcome"})

	completerScheduleLagSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lro",
		Subsystem: "completer",
		Name:      "schedule_lag_seconds",
		Help:      "Time between an operation falling due and its completion",
		Buckets:   prometheus.DefBuckets,
	})
)

// Completer consumes schedule messages and drives operations to their
// terminal state once they fall due.
type Completer struct {
	operations opdomain.OperationCompleter
	log        *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

type Option func(c *Completer)

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Completer) { c.sleep = sleep }
}

func WithClock(now func() time.Time) Option {
	return func(c *Completer) { c.now = now }
}

func NewCompleter(operations opdomain.OperationCompleter, log *zap.Logger, opts ...Option) (*Completer, error) {
	if operations == nil {
		return nil, errors.New("operation completer is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Completer{
		operations: operations,
		log:        log,
		sleep:      gax.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Handler adapts the completer to the JetStream consumer contract.
func (c *Completer) Handler() natscons.Handler {
	return func(ctx context.Context, msg jetstream.Msg) error {
		return c.Handle(ctx, msg.Data())
	}
}

// Handle waits until the message is due and completes the operation. A nil
// return acknowledges the message; an error requeues it.
func (c *Completer) Handle(ctx context.Context, payload []byte) error {
	var msg opdomain.ScheduleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		// Malformed messages would fail on every redelivery. Drop them.
		c.log.Warn("dropping malformed schedule message", zap.Error(err))
		completerSchedulesProcessedTotal.WithLabelValues("malformed").Inc()
		return nil
	}
	if msg.Name == "" {
		c.log.Warn("dropping schedule message without operation name")
		completerSchedulesProcessedTotal.WithLabelValues("malformed").Inc()
		return nil
	}

	if delay := msg.DueAt.Sub(c.now()); delay > 0 {
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	_, err := c.operations.CompleteOperation(ctx, &opdomain.CompleteOperationArgs{
		Name:    msg.Name,
		Outcome: msg.Outcome,
	})
	switch {
	case err == nil:
		completerScheduleLagSeconds.Observe(c.now().Sub(msg.DueAt).Seconds())
		completerSchedulesProcessedTotal.WithLabelValues("completed").Inc()
		c.log.Info("operation completed on schedule", zap.String("operation", string(msg.Name)))
		return nil
	case errors.Is(err, opdomain.ErrOperationAlreadyDone),
		errors.Is(err, opdomain.ErrOperationNotFound):
		// Cancelled or deleted while waiting. Nothing left to do.
		completerSchedulesProcessedTotal.WithLabelValues("skipped").Inc()
		c.log.Info("schedule skipped", zap.String("operation", string(msg.Name)), zap.Error(err))
		return nil
	default:
		completerSchedulesProcessedTotal.WithLabelValues("failed").Inc()
		c.log.Error("cannot complete operation", zap.String("operation", string(msg.Name)), zap.Error(err))
		return err
	}
}
