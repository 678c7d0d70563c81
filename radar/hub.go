package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

var (
	tracer = otel.Tracer("radar")
	meter  = otel.Meter("radar")
)

// LiveOrderFeed hands out live order events to dashboards.
type LiveOrderFeed interface {
	Publish(ctx context.Context, event orders.Event) error
	Subscribe(ctx context.Context, restaurantID string) *Subscription
	Unsubscribe(ctx context.Context, sub *Subscription)
}

// Subscription receives the events of one restaurant, or of all restaurants
// when RestaurantID is empty.
type Subscription struct {
	ID           string
	RestaurantID string
	events       chan orders.Event
}

func (s *Subscription) Events() <-chan orders.Event {
	return s.events
}

func (s *Subscription) wants(event orders.Event) bool {
	return s.RestaurantID == "" || s.RestaurantID == event.RestaurantID
}

// Hub fans events out to its subscribers. A subscriber whose buffer is full
// misses the event instead of blocking the others.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
	buffer      int

	subscriberGauge metric.Int64UpDownCounter
	droppedCounter  metric.Int64Counter
}

func NewHub(buffer int) (*Hub, error) {
	ctx := context.Background()

	subscriberGauge, err := meter.Int64UpDownCounter(
		"radar.subscribers",
		metric.WithDescription("Number of connected dashboards"),
		metric.WithUnit("{subscriber}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create subscriber gauge", slog.Any("err", err))
		return nil, err
	}

	droppedCounter, err := meter.Int64Counter(
		"radar.events.dropped",
		metric.WithDescription("Number of events a slow subscriber missed"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create dropped counter", slog.Any("err", err))
		return nil, err
	}

	return &Hub{
		subscribers:     make(map[*Subscription]struct{}),
		buffer:          buffer,
		subscriberGauge: subscriberGauge,
		droppedCounter:  droppedCounter,
	}, nil
}

var _ LiveOrderFeed = (*Hub)(nil)

func (h *Hub) Publish(ctx context.Context, event orders.Event) error {
	ctx, span := tracer.Start(ctx, "Hub.Publish")
	defer span.End()

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.droppedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("jollof.restaurant_id", event.RestaurantID)))
			slog.WarnContext(ctx, "subscriber too slow, dropping event",
				slog.String("subscriber_id", sub.ID), slog.String("order_id", event.OrderID))
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, restaurantID string) *Subscription {
	sub := &Subscription{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		events:       make(chan orders.Event, h.buffer),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	h.subscriberGauge.Add(ctx, 1)
	slog.InfoContext(ctx, "dashboard subscribed", slog.String("subscriber_id", sub.ID), slog.String("restaurant_id", restaurantID))
	return sub
}

// Unsubscribe closes the subscription channel. It is safe to call twice.
func (h *Hub) Unsubscribe(ctx context.Context, sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
		close(sub.events)
	}
	h.mu.Unlock()

	if ok {
		h.subscriberGauge.Add(ctx, -1)
		slog.InfoContext(ctx, "dashboard unsubscribed", slog.String("subscriber_id", sub.ID))
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
