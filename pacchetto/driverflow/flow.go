// Package driverflow drives a driver through picking up and delivering one
// order. The backend stays the authority on every status change; the flow
// only moves forward after the matching request succeeded.
package driverflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

const NoOrderSelected = "No order selected"

var (
	ErrWrongStage      = errors.New("action not available at this stage")
	ErrEmptyCode       = errors.New("code is required")
	ErrNoOrderSelected = errors.New("no order selected")
	ErrBusy            = errors.New("a request is already in flight")
	// ErrStale is returned when the flow was reset while the request ran.
	ErrStale = errors.New("response discarded after reset")
	// ErrNotDeliverable is returned when the order is in no state a driver can start from.
	ErrNotDeliverable = errors.New("order is not ready for delivery")
)

// Backend is the part of the order API the flow needs.
type Backend interface {
	GetOrder(ctx context.Context, orderID string) (orders.Order, error)
	AcceptOrder(ctx context.Context, driverID, orderID string) (orders.Order, error)
	ConfirmPickup(ctx context.Context, orderID, code string) (orders.Order, error)
	ConfirmDelivery(ctx context.Context, orderID, code string) (orders.Order, error)
}

// Flow is safe for concurrent use.
type Flow struct {
	backend  Backend
	driverID string

	mu     sync.Mutex
	stage  Stage
	order  *orders.Order
	err    error
	notice string
	epoch  uint64
	cancel context.CancelFunc
}

func New(backend Backend, driverID string) *Flow {
	return &Flow{backend: backend, driverID: driverID}
}

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

func (f *Flow) Flags() Flags {
	return f.Stage().Flags()
}

// Order returns the selected order.
func (f *Flow) Order() (orders.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return orders.Order{}, false
	}
	return *f.order, true
}

// Err is the inline error of the current stage.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Notice is the informational message of the order list, if any.
func (f *Flow) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Open loads orderID and shows its details. On failure the flow stays on the
// order list with the "No order selected" notice.
func (f *Flow) Open(ctx context.Context, orderID string) error {
	err := f.call(ctx, StageOrderList, StageOrderDetails, func(ctx context.Context, _ *orders.Order) (orders.Order, error) {
		return f.backend.GetOrder(ctx, orderID)
	})
	if err != nil && !errors.Is(err, ErrWrongStage) && !errors.Is(err, ErrBusy) && !errors.Is(err, ErrStale) {
		f.mu.Lock()
		f.notice = NoOrderSelected
		f.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrNoOrderSelected, err)
	}
	return err
}

// StartDelivery accepts a ready order for this driver. An order already
// assigned to this driver moves on without a request.
func (f *Flow) StartDelivery(ctx context.Context) error {
	return f.call(ctx, StageOrderDetails, StagePickupDelivery, func(ctx context.Context, o *orders.Order) (orders.Order, error) {
		switch {
		case o.Status == orders.StatusReadyForPickup:
			return f.backend.AcceptOrder(ctx, f.driverID, o.ID)
		case o.Status == orders.StatusAssigned && o.IsAssignedTo(f.driverID):
			return *o, nil
		case o.Status == orders.StatusAssigned:
			return orders.Order{}, orders.ErrNotAssignedDriver
		default:
			return orders.Order{}, fmt.Errorf("%w: status is %s", ErrNotDeliverable, o.Status)
		}
	})
}

func (f *Flow) CompletePickup() error {
	return f.step(StagePickupDelivery, StageConfirmPickup)
}

// SubmitPickupCode asks the backend to move the order in transit.
func (f *Flow) SubmitPickupCode(ctx context.Context, code string) error {
	return f.submitCode(ctx, StageConfirmPickup, StageConfirmedPickup, code, f.backend.ConfirmPickup)
}

func (f *Flow) ContinueToCustomer() error {
	return f.step(StageConfirmedPickup, StageCustomerDelivery)
}

func (f *Flow) CompleteDelivery() error {
	return f.step(StageCustomerDelivery, StageConfirmDelivery)
}

// SubmitDeliveryCode asks the backend to mark the order delivered.
func (f *Flow) SubmitDeliveryCode(ctx context.Context, code string) error {
	return f.submitCode(ctx, StageConfirmDelivery, StageConfirmedDelivery, code, f.backend.ConfirmDelivery)
}

// BackToOrders returns to the order list from any stage. Any request in
// flight is cancelled and its response ignored.
func (f *Flow) BackToOrders() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.stage = StageOrderList
	f.order = nil
	f.err = nil
	f.notice = ""
}

func (f *Flow) step(from, to Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != from {
		return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
	}
	if f.cancel != nil {
		return ErrBusy
	}
	f.stage = to
	f.err = nil
	return nil
}

func (f *Flow) submitCode(ctx context.Context, from, to Stage, code string, confirm func(context.Context, string, string) (orders.Order, error)) error {
	code = strings.TrimSpace(code)
	if code == "" {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.stage != from {
			return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
		}
		f.err = ErrEmptyCode
		return ErrEmptyCode
	}
	return f.call(ctx, from, to, func(ctx context.Context, o *orders.Order) (orders.Order, error) {
		return confirm(ctx, o.ID, code)
	})
}

// call runs fn while on stage from and moves to stage to if it succeeds.
func (f *Flow) call(ctx context.Context, from, to Stage, fn func(context.Context, *orders.Order) (orders.Order, error)) error {
	f.mu.Lock()
	if f.stage != from {
		defer f.mu.Unlock()
		return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
	}
	if f.cancel != nil {
		f.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	epoch := f.epoch
	var current orders.Order
	if f.order != nil {
		current = *f.order
	}
	f.mu.Unlock()

	o, err := fn(ctx, &current)
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		slog.DebugContext(ctx, "dropping response after reset", slog.String("stage", from.String()))
		return ErrStale
	}
	f.cancel = nil
	if err != nil {
		f.err = err
		slog.WarnContext(ctx, "driver flow request failed",
			slog.String("stage", from.String()), slog.String("driver_id", f.driverID), slog.Any("err", err))
		return err
	}
	f.order = &o
	f.stage = to
	f.err = nil
	f.notice = ""
	return nil
}
