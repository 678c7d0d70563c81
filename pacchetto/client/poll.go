package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

const DefaultPollInterval = 30 * time.Second

// PollDriverOrders fetches the driver's orders right away and then every
// interval, handing each successful result to fn. Failed fetches are logged
// and retried on the next tick. It returns when ctx is done.
func (c *Client) PollDriverOrders(ctx context.Context, driverID string, interval time.Duration, fn func([]orders.Order)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		list, err := c.ListDriverOrders(ctx, driverID)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			slog.WarnContext(ctx, "failed to refresh driver orders", slog.String("driver_id", driverID), slog.Any("err", err))
		default:
			fn(list)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
