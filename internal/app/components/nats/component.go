package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	oprepo "github.com/longrunio/lro/internal/repositories/operations"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const operationsBucket = "operations"

func NewConnection(dsn string) (*nats.Conn, error) {
	nc, err := nats.Connect(dsn)
	if err != nil {
		return nil, err
	}

	if err := nc.FlushTimeout(1 * time.Second); err != nil {
		return nil, errors.New("not connected")
	}

	return nc, nil
}

// Storage bundles the JetStream resources the emulator needs: the KV
// bucket holding operation state and the schedule stream feeding the
// completer. Missing resources are provisioned on startup.
type Storage struct {
	Conn     *nats.Conn
	JS       jetstream.JetStream
	OpMeta   jetstream.KeyValue
	Schedule jetstream.Stream
}

func NewStorage(url string) (*Storage, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create jetstream: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opMeta, err := js.KeyValue(ctx, operationsBucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		opMeta, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: operationsBucket})
	}
	if err != nil {
		return nil, fmt.Errorf("connect to kv %s: %w", operationsBucket, err)
	}

	schedule, err := js.Stream(ctx, oprepo.StreamOperations)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		schedule, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     oprepo.StreamOperations,
			Subjects: []string{oprepo.SubjectSchedule},
		})
	}
	if err != nil {
		return nil, fmt.Errorf("connect to stream %s: %w", oprepo.StreamOperations, err)
	}

	return &Storage{
		Conn:     conn,
		JS:       js,
		OpMeta:   opMeta,
		Schedule: schedule,
	}, nil
}
