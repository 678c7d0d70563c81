package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/taldoflemis/jollof/pacchetto/orders"
	"github.com/taldoflemis/jollof/pacchetto/telemetry"
)

// NATSForwarder reads order events from the JetStream stream and publishes
// them to the feed.
type NATSForwarder struct {
	js      jetstream.JetStream
	stream  string
	subject string
	replay  bool
	feed    LiveOrderFeed

	forwardedCounter metric.Int64Counter
}

func NewNATSForwarder(nc *nats.Conn, stream, subject string, replay bool, feed LiveOrderFeed) (*NATSForwarder, error) {
	ctx := context.Background()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create jetstream context", slog.Any("err", err))
		return nil, err
	}

	forwardedCounter, err := meter.Int64Counter(
		"radar.events.forwarded",
		metric.WithDescription("Number of order events forwarded to dashboards"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create forwarded counter", slog.Any("err", err))
		return nil, err
	}

	return &NATSForwarder{
		js:               js,
		stream:           stream,
		subject:          subject,
		replay:           replay,
		feed:             feed,
		forwardedCounter: forwardedCounter,
	}, nil
}

// Run consumes until ctx is done. Events reach the feed in stream order.
func (f *NATSForwarder) Run(ctx context.Context) error {
	policy := jetstream.DeliverNewPolicy
	if f.replay {
		policy = jetstream.DeliverAllPolicy
	}

	consumer, err := f.js.OrderedConsumer(ctx, f.stream, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{orders.RestaurantSubject(f.subject, "")},
		DeliverPolicy:  policy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create ordered consumer", slog.String("stream", f.stream), slog.Any("err", err))
		return err
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		f.handle(ctx, msg)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to start consuming", slog.Any("err", err))
		return err
	}
	defer cc.Stop()

	slog.InfoContext(ctx, "forwarding order events", slog.String("stream", f.stream), slog.String("subject", f.subject))
	<-ctx.Done()
	return nil
}

func (f *NATSForwarder) handle(ctx context.Context, msg jetstream.Msg) {
	ctx = telemetry.GetContextFromJetstreamMsg(ctx, msg)
	ctx, span := tracer.Start(ctx, "NATSForwarder.handle", trace.WithAttributes(
		attribute.String("messaging.subject", msg.Subject()),
	))
	defer span.End()

	var event orders.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal order event", slog.String("subject", msg.Subject()), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("jollof.order_id", event.OrderID),
		attribute.String("jollof.order_status", string(event.To)),
	)

	if err := f.feed.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish order event", slog.String("order_id", event.OrderID), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	f.forwardedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("jollof.order_status", string(event.To))))
}
