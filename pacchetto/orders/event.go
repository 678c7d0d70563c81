package orders

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status_changed"
)

// Event announces a change of an order. It never carries codes.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	OrderID      string    `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	RestaurantID string    `json:"restaurantId"`
	DriverID     *string   `json:"driverId,omitempty"`
	Actor        Actor     `json:"actor"`
	From         Status    `json:"from,omitempty"`
	To           Status    `json:"to"`
	At           time.Time `json:"at"`
}

// NewEvent describes o having moved from from to its current status.
// from is empty for a created order.
func NewEvent(id string, o Order, actor Actor, from Status, at time.Time) Event {
	typ := EventStatusChanged
	if from == "" {
		typ = EventCreated
	}
	return Event{
		ID:           id,
		Type:         typ,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		RestaurantID: o.RestaurantID,
		DriverID:     o.DriverID,
		Actor:        actor,
		From:         from,
		To:           o.Status,
		At:           at,
	}
}

// Subject is the messaging subject of e under prefix:
// <prefix>.<restaurant>.<status>.
func (e Event) Subject(prefix string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, e.RestaurantID, e.To)
}

// RestaurantSubject matches every event of one restaurant under prefix.
func RestaurantSubject(prefix, restaurantID string) string {
	if restaurantID == "" {
		return prefix + ".>"
	}
	return fmt.Sprintf("%s.%s.>", prefix, restaurantID)
}
