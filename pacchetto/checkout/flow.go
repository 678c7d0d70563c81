// Package checkout walks a customer from the cart to a placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
	"github.com/taldoflemis/jollof/pacchetto/session"
)

type Stage int

const (
	StageCart Stage = iota
	StageIdentify
	StageDeliveryInfo
	StagePayment
	StageConfirmation
)

func (s Stage) String() string {
	switch s {
	case StageCart:
		return "cart"
	case StageIdentify:
		return "identify"
	case StageDeliveryInfo:
		return "delivery_info"
	case StagePayment:
		return "payment"
	case StageConfirmation:
		return "confirmation"
	}
	return "unknown"
}

var (
	ErrWrongStage        = errors.New("action not available at this stage")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrIncompleteAddress = errors.New("street, city and postal code are required")
	ErrNoPaymentMethod   = errors.New("no payment method chosen")
	ErrInvalidPayment    = errors.New("unknown payment method")
	ErrScheduleInPast    = errors.New("scheduled delivery time is in the past")
	ErrBusy              = errors.New("order is already being placed")
)

type Submitter interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (orders.Order, error)
}

type Estimator interface {
	Estimate(ctx context.Context, addr fees.Address) (fees.Quote, error)
}

// Summary is what the customer is shown before paying.
type Summary struct {
	Items       []CartItem
	Subtotal    string
	DeliveryFee string
	TaxAmount   string
	Total       string
}

type Option func(*Flow)

// WithTaxRate sets the rate applied to the subtotal. It must match the
// backend's rate for the summary to equal the charged total.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(f *Flow) { f.taxRate = rate }
}

// Flow is safe for concurrent use.
type Flow struct {
	cart      *Cart
	session   *session.Session
	submitter Submitter
	estimator Estimator
	validate  *validator.Validate
	taxRate   decimal.Decimal
	now       func() time.Time

	mu         sync.Mutex
	stage      Stage
	submitting bool
	guest     *api.Guest
	address   fees.Address
	scheduled *time.Time
	quote     fees.Quote
	payment   api.PaymentMethod
	placed    *orders.Order
	err       error
}

// New builds a flow on cart. sess must not be nil; pass session.New() for a
// signed-out visitor.
func New(cart *Cart, sess *session.Session, submitter Submitter, estimator Estimator, opts ...Option) *Flow {
	f := &Flow{
		cart:      cart,
		session:   sess,
		submitter: submitter,
		estimator: estimator,
		validate:  validator.New(),
		taxRate:   orders.DefaultTaxRate,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Cart() *Cart { return f.cart }

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Placed returns the order created by Submit.
func (f *Flow) Placed() (orders.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placed == nil {
		return orders.Order{}, false
	}
	return *f.placed, true
}

func (f *Flow) Quote() fees.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote
}

// Proceed leaves the cart. A signed-in customer skips identification.
func (f *Flow) Proceed() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expectLocked(StageCart); err != nil {
		return err
	}
	if f.cart.Len() == 0 {
		return f.failLocked(ErrEmptyCart)
	}
	f.stage = StageIdentify
	if f.session.LoggedIn() {
		f.stage = StageDeliveryInfo
	}
	f.err = nil
	return nil
}

// ContinueAsCustomer uses the signed-in account.
func (f *Flow) ContinueAsCustomer() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expectLocked(StageIdentify); err != nil {
		return err
	}
	if !f.session.LoggedIn() {
		return f.failLocked(ErrNotLoggedIn)
	}
	f.guest = nil
	f.stage = StageDeliveryInfo
	f.err = nil
	return nil
}

func (f *Flow) ContinueAsGuest(guest api.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expectLocked(StageIdentify); err != nil {
		return err
	}
	if err := f.validate.Struct(guest); err != nil {
		return f.failLocked(err)
	}
	f.guest = &guest
	f.stage = StageDeliveryInfo
	f.err = nil
	return nil
}

// SetDeliveryInfo prices the address and moves on to payment. Format errors
// and refused addresses keep the flow here.
func (f *Flow) SetDeliveryInfo(ctx context.Context, addr fees.Address, scheduled *time.Time) error {
	f.mu.Lock()
	if err := f.expectLocked(StageDeliveryInfo); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	if !addr.Complete() {
		return f.fail(ErrIncompleteAddress)
	}
	if scheduled != nil && scheduled.Before(f.now()) {
		return f.fail(ErrScheduleInPast)
	}

	quote, err := f.estimator.Estimate(ctx, addr)
	if err != nil {
		return f.fail(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != StageDeliveryInfo {
		return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
	}
	f.address = addr
	f.scheduled = scheduled
	f.quote = quote
	f.stage = StagePayment
	f.err = nil
	return nil
}

func (f *Flow) ChoosePayment(method api.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expectLocked(StagePayment); err != nil {
		return err
	}
	if !method.Valid() {
		return f.failLocked(fmt.Errorf("%w: %q", ErrInvalidPayment, method))
	}
	f.payment = method
	f.err = nil
	return nil
}

// Summary prices the cart the way the backend will.
func (f *Flow) Summary() Summary {
	f.mu.Lock()
	fee := f.quote.Fee
	f.mu.Unlock()

	items := f.cart.Items()
	priced := make([]orders.Item, 0, len(items))
	for _, it := range items {
		priced = append(priced, orders.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	totals := orders.ComputeTotals(priced, fee, f.taxRate, decimal.Zero)

	return Summary{
		Items:       items,
		Subtotal:    totals.Subtotal.StringFixed(2),
		DeliveryFee: totals.DeliveryFee.StringFixed(2),
		TaxAmount:   totals.TaxAmount.StringFixed(2),
		Total:       totals.Total().StringFixed(2),
	}
}

// Submit places the order. On success the cart is emptied and the flow shows
// the confirmation; on failure it stays on payment. Only one submission runs
// at a time.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if err := f.expectLocked(StagePayment); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.payment == "" {
		defer f.mu.Unlock()
		return f.failLocked(ErrNoPaymentMethod)
	}
	req := api.CreateOrderRequest{
		RestaurantID:          f.cart.RestaurantID(),
		DeliveryAddress:       strings.TrimSpace(f.address.Street),
		DeliveryCity:          strings.TrimSpace(f.address.City),
		DeliveryPostalCode:    strings.TrimSpace(f.address.PostalCode),
		ScheduledDeliveryTime: f.scheduled,
		PaymentMethod:         f.payment,
		Guest:                 f.guest,
	}
	f.submitting = true
	f.mu.Unlock()

	for _, it := range f.cart.Items() {
		req.Items = append(req.Items, api.OrderItemRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	var placed orders.Order
	err := ErrEmptyCart
	if len(req.Items) > 0 {
		placed, err = f.submitter.CreateOrder(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		slog.ErrorContext(ctx, "failed to place order", slog.String("restaurant_id", req.RestaurantID), slog.Any("err", err))
		return f.failLocked(err)
	}
	f.placed = &placed
	f.stage = StageConfirmation
	f.err = nil
	f.cart.Clear()
	return nil
}

// Back moves one stage backwards. There is no way back from the confirmation.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrBusy
	}
	switch f.stage {
	case StageIdentify:
		f.stage = StageCart
	case StageDeliveryInfo:
		if f.session.LoggedIn() {
			f.stage = StageCart
		} else {
			f.stage = StageIdentify
		}
	case StagePayment:
		f.stage = StageDeliveryInfo
	default:
		return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
	}
	f.err = nil
	return nil
}

// Reset starts over. The cart is kept.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return
	}
	f.stage = StageCart
	f.guest = nil
	f.address = fees.Address{}
	f.scheduled = nil
	f.quote = fees.Quote{}
	f.payment = ""
	f.placed = nil
	f.err = nil
}

func (f *Flow) expectLocked(s Stage) error {
	if f.stage != s {
		return fmt.Errorf("%w: on %s", ErrWrongStage, f.stage)
	}
	return nil
}

func (f *Flow) failLocked(err error) error {
	f.err = err
	return err
}

func (f *Flow) fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failLocked(err)
}
