package oprepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	SubjectSchedule = "operations.schedule"

	StreamOperations = "OPERATIONS"
)

//go:generate mockery --name Stream --output ./mocks --outpkg mocks --with-expecter --filename stream.go
type Stream interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher hands scheduled completions to the completer over JetStream.
type Publisher struct {
	js Stream
}

func NewPublisher(js Stream) *Publisher {
	return &Publisher{js: js}
}

// ensureStream gets the stream handle and creates the stream when it does
// not exist yet.
func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.Stream(ctx, StreamOperations)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("get stream %s: %w", StreamOperations, err)
	}

	_, err = p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     StreamOperations,
		Subjects: []string{SubjectSchedule},
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamOperations, err)
	}
	return nil
}

func (p *Publisher) PublishSchedule(ctx context.Context, msg *opdomain.ScheduleMessage) error {
	if msg == nil {
		return errors.New("schedule message is nil")
	}
	if msg.Name == "" {
		return opdomain.ErrInvalidOperationName
	}

	if err := p.ensureStream(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal schedule msg: %w", err)
	}

	if _, err := p.js.Publish(ctx, SubjectSchedule, b); err != nil {
		return fmt.Errorf("jetstream publish schedule: %w", err)
	}
	return nil
}
