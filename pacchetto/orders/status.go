package orders

import (
	"errors"
	"fmt"
	"slices"
)

// Status is the position of an order in its lifecycle.
type Status string

const (
	StatusNew            Status = "new"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusAssigned       Status = "assigned"
	StatusInTransit      Status = "in_transit"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

var allStatuses = []Status{
	StatusNew,
	StatusConfirmed,
	StatusPreparing,
	StatusReadyForPickup,
	StatusAssigned,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

var ErrUnknownStatus = errors.New("unknown order status")

// Statuses returns every status in lifecycle order, cancelled last.
func Statuses() []Status {
	return slices.Clone(allStatuses)
}

func (s Status) Valid() bool {
	return slices.Contains(allStatuses, s)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PickupCodeVisible reports whether the pickup code carries meaning in s.
func (s Status) PickupCodeVisible() bool {
	return s == StatusReadyForPickup || s == StatusAssigned || s == StatusInTransit
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Actor is whoever asks for a status change.
type Actor string

const (
	ActorRestaurant Actor = "restaurant"
	ActorDriver     Actor = "driver"
	ActorCustomer   Actor = "customer"
	ActorSystem     Actor = "system"
)

func (a Actor) Valid() bool {
	switch a {
	case ActorRestaurant, ActorDriver, ActorCustomer, ActorSystem:
		return true
	}
	return false
}
