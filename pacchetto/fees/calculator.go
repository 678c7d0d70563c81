package fees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultDebounce = 800 * time.Millisecond

var ErrAddressRejected = errors.New("address rejected")

type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// Complete reports whether every field holds something besides spaces.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

// Validation is the answer of the address validation endpoint.
type Validation struct {
	Valid       bool            `json:"valid"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Message     string          `json:"message,omitempty"`
}

type AddressValidator interface {
	ValidateAddress(ctx context.Context, addr Address) (Validation, error)
}

type Source string

const (
	SourceDefault   Source = "default"
	SourceValidated Source = "validated"
	SourceFallback  Source = "fallback"
)

// Quote is the fee computed for an address.
type Quote struct {
	Address Address
	Fee     decimal.Decimal
	Source  Source
	// Err is a format error or the validator's refusal, shown next to the address.
	Err error
}

type Option func(*Calculator)

func WithDebounce(d time.Duration) Option {
	return func(c *Calculator) { c.debounce = d }
}

// WithListener registers fn to receive every quote produced by Update.
func WithListener(fn func(Quote)) Option {
	return func(c *Calculator) { c.listener = fn }
}

// Calculator turns addresses into delivery fees.
type Calculator struct {
	validator AddressValidator
	debounce  time.Duration
	listener  func(Quote)

	base     context.Context
	stopBase context.CancelFunc

	mu         sync.Mutex
	current    Quote
	generation uint64
	timer      *time.Timer
	inflight   context.CancelFunc
}

func NewCalculator(validator AddressValidator, opts ...Option) *Calculator {
	base, stop := context.WithCancel(context.Background())
	c := &Calculator{
		validator: validator,
		debounce:  DefaultDebounce,
		base:      base,
		stopBase:  stop,
		current:   Quote{Fee: DefaultFee, Source: SourceDefault},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Estimate computes the fee for addr right away.
//
// Incomplete addresses get the default fee. A malformed postal code gets the
// default fee and ErrInvalidPostalCode without calling the validator. When the
// validator fails the fallback table applies and no error is returned.
func (c *Calculator) Estimate(ctx context.Context, addr Address) (Quote, error) {
	if !addr.Complete() {
		return Quote{Address: addr, Fee: DefaultFee, Source: SourceDefault}, nil
	}

	postalCode := strings.TrimSpace(addr.PostalCode)
	if err := ValidatePostalCode(postalCode); err != nil {
		return Quote{Address: addr, Fee: DefaultFee, Source: SourceDefault, Err: err}, err
	}

	res, err := c.validator.ValidateAddress(ctx, addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Quote{}, ctxErr
		}
		slog.WarnContext(ctx, "address validation unavailable, using fallback fee",
			slog.String("postal_code", postalCode), slog.Any("err", err))
		return Quote{Address: addr, Fee: FallbackFee(postalCode), Source: SourceFallback}, nil
	}

	if !res.Valid {
		msg := res.Message
		if msg == "" {
			msg = "address cannot be delivered to"
		}
		err := fmt.Errorf("%w: %s", ErrAddressRejected, msg)
		return Quote{Address: addr, Fee: FallbackFee(postalCode), Source: SourceFallback, Err: err}, err
	}

	return Quote{Address: addr, Fee: res.DeliveryFee, Source: SourceValidated}, nil
}

// Update schedules an estimate for addr after the debounce delay. Each call
// supersedes the pending one and cancels its request. An incomplete address
// resets the quote to the default at once.
func (c *Calculator) Update(addr Address) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.stopPendingLocked()

	if !addr.Complete() {
		q := Quote{Address: addr, Fee: DefaultFee, Source: SourceDefault}
		c.current = q
		c.mu.Unlock()
		c.notify(q)
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() { c.run(gen, addr) })
	c.mu.Unlock()
}

func (c *Calculator) run(gen uint64, addr Address) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.base)
	c.inflight = cancel
	c.mu.Unlock()
	defer cancel()

	q, _ := c.Estimate(ctx, addr)
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.current = q
	c.inflight = nil
	c.mu.Unlock()
	c.notify(q)
}

// Current returns the latest quote.
func (c *Calculator) Current() Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close drops any pending estimate.
func (c *Calculator) Close() {
	c.mu.Lock()
	c.generation++
	c.stopPendingLocked()
	c.mu.Unlock()
	c.stopBase()
}

func (c *Calculator) stopPendingLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
}

func (c *Calculator) notify(q Quote) {
	if c.listener != nil {
		c.listener(q)
	}
}
