package orders

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCodeMismatch      = errors.New("code mismatch")
	ErrDriverRequired    = errors.New("driver id required")
	ErrNotAssignedDriver = errors.New("order is assigned to another driver")
)

// Precondition is the extra check or side effect attached to an edge.
type Precondition int

const (
	PreconditionNone Precondition = iota
	// PreconditionIssuePickupCode generates the pickup code on entry.
	PreconditionIssuePickupCode
	// PreconditionAssignDriver records the accepting driver.
	PreconditionAssignDriver
	// PreconditionPickupCode requires the submitted code to equal the pickup code.
	PreconditionPickupCode
	// PreconditionDeliveryCode requires the submitted code to equal the delivery code.
	PreconditionDeliveryCode
)

type Transition struct {
	Actor        Actor
	From         Status
	To           Status
	Precondition Precondition
}

var transitions = []Transition{
	{ActorRestaurant, StatusNew, StatusConfirmed, PreconditionNone},
	{ActorRestaurant, StatusConfirmed, StatusPreparing, PreconditionNone},
	{ActorRestaurant, StatusPreparing, StatusReadyForPickup, PreconditionIssuePickupCode},
	{ActorRestaurant, StatusNew, StatusCancelled, PreconditionNone},
	{ActorRestaurant, StatusConfirmed, StatusCancelled, PreconditionNone},
	{ActorDriver, StatusReadyForPickup, StatusAssigned, PreconditionAssignDriver},
	{ActorDriver, StatusAssigned, StatusInTransit, PreconditionPickupCode},
	{ActorDriver, StatusInTransit, StatusDelivered, PreconditionDeliveryCode},
}

type transitionKey struct {
	actor Actor
	from  Status
	to    Status
}

var transitionIndex = func() map[transitionKey]Transition {
	m := make(map[transitionKey]Transition, len(transitions))
	for _, t := range transitions {
		m[transitionKey{t.Actor, t.From, t.To}] = t
	}
	return m
}()

// Transitions returns a copy of the full table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Lookup returns the edge actor may take from -> to.
func Lookup(actor Actor, from, to Status) (Transition, error) {
	t, ok := transitionIndex[transitionKey{actor, from, to}]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s cannot move an order from %s to %s (allowed: %s)",
			ErrInvalidTransition, actor, from, to, describe(NextStatuses(actor, from)))
	}
	return t, nil
}

func CanTransition(actor Actor, from, to Status) error {
	_, err := Lookup(actor, from, to)
	return err
}

// NextStatuses lists the statuses actor may move an order in from to, in table order.
func NextStatuses(actor Actor, from Status) []Status {
	var next []Status
	for _, t := range transitions {
		if t.Actor == actor && t.From == from {
			next = append(next, t.To)
		}
	}
	return next
}

func describe(statuses []Status) string {
	if len(statuses) == 0 {
		return "none"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Proof carries what a precondition may need.
type Proof struct {
	DriverID string
	Code     string
}

// Machine applies transitions to orders.
type Machine struct {
	newCode func() string
}

// NewMachine returns a machine issuing pickup codes with newCode.
func NewMachine(newCode func() string) *Machine {
	return &Machine{newCode: newCode}
}

// Apply moves o to status to on behalf of actor. o is left untouched when an
// error is returned.
func (m *Machine) Apply(o *Order, actor Actor, to Status, proof Proof) error {
	t, err := Lookup(actor, o.Status, to)
	if err != nil {
		return err
	}

	next := *o
	switch t.Precondition {
	case PreconditionIssuePickupCode:
		next.PickupCode = m.newCode()
	case PreconditionAssignDriver:
		if proof.DriverID == "" {
			return ErrDriverRequired
		}
		if o.DriverID != nil && *o.DriverID != proof.DriverID {
			return ErrNotAssignedDriver
		}
		driverID := proof.DriverID
		next.DriverID = &driverID
	case PreconditionPickupCode:
		if err := checkDriver(o, proof); err != nil {
			return err
		}
		if !codesEqual(o.PickupCode, proof.Code) {
			return fmt.Errorf("%w: pickup code does not match", ErrCodeMismatch)
		}
	case PreconditionDeliveryCode:
		if err := checkDriver(o, proof); err != nil {
			return err
		}
		if !codesEqual(o.DeliveryCode, proof.Code) {
			return fmt.Errorf("%w: delivery code does not match", ErrCodeMismatch)
		}
	}

	next.Status = to
	*o = next
	return nil
}

func checkDriver(o *Order, proof Proof) error {
	if proof.DriverID == "" {
		return ErrDriverRequired
	}
	if o.DriverID == nil || *o.DriverID != proof.DriverID {
		return ErrNotAssignedDriver
	}
	return nil
}

func codesEqual(expected, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
