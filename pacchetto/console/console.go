// Package console is the restaurant owner's view of incoming orders.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

const NoOrdersFound = "No orders found"

var ErrOrderNotFound = errors.New("order not in the current list")

type Backend interface {
	ListRestaurantOrders(ctx context.Context, restaurantID string) ([]orders.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, to orders.Status) (orders.Order, error)
}

// Console keeps an immutable snapshot of a restaurant's orders. It is safe
// for concurrent use.
type Console struct {
	backend      Backend
	restaurantID string

	mu       sync.RWMutex
	snapshot []orders.Order
	counts   map[orders.Bucket]int
	loaded   bool
	err      error
}

func New(backend Backend, restaurantID string) *Console {
	return &Console{
		backend:      backend,
		restaurantID: restaurantID,
		counts:       orders.CountBuckets(nil),
	}
}

// Refresh replaces the snapshot with the backend's current list. On error the
// previous snapshot is kept.
func (c *Console) Refresh(ctx context.Context) error {
	list, err := c.backend.ListRestaurantOrders(ctx, c.restaurantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err
		slog.ErrorContext(ctx, "failed to load restaurant orders",
			slog.String("restaurant_id", c.restaurantID), slog.Any("err", err))
		return err
	}
	c.snapshot = slices.Clone(list)
	c.counts = orders.CountBuckets(c.snapshot)
	c.loaded = true
	c.err = nil
	return nil
}

// Orders returns the orders of bucket b.
func (c *Console) Orders(b orders.Bucket) []orders.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return orders.Filter(c.snapshot, b)
}

func (c *Console) Counts() map[orders.Bucket]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.counts)
}

// Empty reports a loaded snapshot without orders.
func (c *Console) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded && len(c.snapshot) == 0
}

func (c *Console) Notice() string {
	if c.Empty() {
		return NoOrdersFound
	}
	return ""
}

func (c *Console) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Actions lists the statuses the restaurant can move o to.
func (c *Console) Actions(o orders.Order) []orders.Status {
	return orders.NextStatuses(orders.ActorRestaurant, o.Status)
}

// Advance asks the backend to move orderID to status to and reloads the list.
// The snapshot only changes through the reload.
func (c *Console) Advance(ctx context.Context, orderID string, to orders.Status) error {
	c.mu.RLock()
	idx := slices.IndexFunc(c.snapshot, func(o orders.Order) bool { return o.ID == orderID })
	var from orders.Status
	if idx >= 0 {
		from = c.snapshot[idx].Status
	}
	c.mu.RUnlock()

	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err := orders.CanTransition(orders.ActorRestaurant, from, to); err != nil {
		return err
	}

	if _, err := c.backend.UpdateOrderStatus(ctx, orderID, to); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	return c.Refresh(ctx)
}
