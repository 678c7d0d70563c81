package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taldoflemis/jollof/pacchetto/orders"
	"github.com/taldoflemis/jollof/pacchetto/telemetry"
)

type EventPublisher interface {
	Publish(ctx context.Context, event orders.Event) error
}

// GoChannelEventPublisher fans events out to in-process subscribers.
type GoChannelEventPublisher struct {
	mu          sync.Mutex
	subscribers []chan orders.Event
}

func NewGoChannelEventPublisher() *GoChannelEventPublisher {
	return &GoChannelEventPublisher{}
}

var _ EventPublisher = (*GoChannelEventPublisher)(nil)

// Subscribe returns a channel receiving every event published from now on.
// Events are dropped for a subscriber whose buffer is full.
func (g *GoChannelEventPublisher) Subscribe(buffer int) <-chan orders.Event {
	ch := make(chan orders.Event, buffer)
	g.mu.Lock()
	g.subscribers = append(g.subscribers, ch)
	g.mu.Unlock()
	return ch
}

func (g *GoChannelEventPublisher) Publish(ctx context.Context, event orders.Event) error {
	ctx, span := tracer.Start(ctx, "GoChannelEventPublisher.Publish")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ch := range g.subscribers {
		select {
		case ch <- event:
		default:
			slog.WarnContext(ctx, "dropping order event for slow subscriber", slog.String("order_id", event.OrderID))
		}
	}
	return nil
}

// NATSEventPublisher writes events to a JetStream stream.
type NATSEventPublisher struct {
	js      jetstream.JetStream
	subject string
}

var _ EventPublisher = (*NATSEventPublisher)(nil)

// NewNATSEventPublisher makes sure the stream exists and captures every
// subject below subject.
func NewNATSEventPublisher(ctx context.Context, nc *nats.Conn, streamName, subject string) (*NATSEventPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create jetstream context", slog.Any("err", err))
		return nil, err
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   []string{subject + ".>"},
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create stream", slog.String("stream", streamName), slog.Any("err", err))
		return nil, err
	}

	return &NATSEventPublisher{js: js, subject: subject}, nil
}

func (n *NATSEventPublisher) Publish(ctx context.Context, event orders.Event) error {
	ctx, span := tracer.Start(ctx, "NATSEventPublisher.Publish", trace.WithAttributes(
		attribute.String("jollof.order_id", event.OrderID),
		attribute.String("jollof.order_status", string(event.To)),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order event", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal order event")
		return err
	}

	msg := &nats.Msg{
		Subject: event.Subject(n.subject),
		Header:  nats.Header{},
		Data:    data,
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	_, err = n.js.PublishMsg(ctx, msg, jetstream.WithMsgID(event.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish order event", slog.String("subject", msg.Subject), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order event")
		return err
	}

	slog.DebugContext(ctx, "published order event", slog.String("subject", msg.Subject))
	return nil
}
