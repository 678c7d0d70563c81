package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
	"github.com/taldoflemis/jollof/pacchetto/session"
)

type fakeSubmitter struct {
	requests []api.CreateOrderRequest
	err      error
}

func (s *fakeSubmitter) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (orders.Order, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return orders.Order{}, s.err
	}
	return orders.Order{ID: "o-1", OrderNumber: "ORD-20260314-0001", Status: orders.StatusNew, RestaurantID: req.RestaurantID}, nil
}

type offlineValidator struct{}

func (offlineValidator) ValidateAddress(ctx context.Context, addr fees.Address) (fees.Validation, error) {
	return fees.Validation{}, errors.New("offline")
}

func jollof(qty int) CartItem {
	return CartItem{MenuItemID: "m-1", Name: "Jollof rice", Price: orders.CHF("18.50"), Quantity: qty, RestaurantID: "r-1", RestaurantName: "Mama Afrika"}
}

func plantain() CartItem {
	return CartItem{MenuItemID: "m-2", Name: "Plantain", Price: orders.CHF("6.00"), Quantity: 1, RestaurantID: "r-1", RestaurantName: "Mama Afrika"}
}

var zurich = fees.Address{Street: "Bahnhofstrasse 1", City: "Zürich", PostalCode: "8001"}

func TestCart(t *testing.T) {
	t.Run("keeps insertion order and merges quantities", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(jollof(1)))
		require.NoError(t, c.Add(plantain()))
		require.NoError(t, c.Add(jollof(1)))

		items := c.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "m-1", items[0].MenuItemID)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, "43.00", c.Subtotal().StringFixed(2))
	})

	t.Run("rejects a second restaurant", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(jollof(1)))

		other := plantain()
		other.RestaurantID = "r-2"
		assert.ErrorIs(t, c.Add(other), ErrRestaurantMismatch)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("quantity zero removes", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(jollof(3)))
		require.NoError(t, c.Add(plantain()))

		require.NoError(t, c.SetQuantity("m-1", 0))

		assert.Equal(t, []string{"m-2"}, []string{c.Items()[0].MenuItemID})
		assert.ErrorIs(t, c.Remove("m-1"), ErrItemNotInCart)
		assert.ErrorIs(t, c.SetQuantity("m-2", -1), ErrInvalidQuantity)
	})

	t.Run("clear empties and forgets the restaurant", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(jollof(1)))
		c.Clear()

		assert.Zero(t, c.Len())
		assert.Empty(t, c.RestaurantID())
	})
}

func TestGuestCheckout(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cart := NewCart()
	require.NoError(t, cart.Add(jollof(2)))
	submitter := &fakeSubmitter{}
	f := New(cart, session.New(), submitter, fees.NewCalculator(offlineValidator{}))

	// Act
	require.NoError(t, f.Proceed())
	require.Equal(t, StageIdentify, f.Stage())
	require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))
	require.NoError(t, f.SetDeliveryInfo(ctx, zurich, nil))
	require.NoError(t, f.ChoosePayment(api.PaymentTwint))
	summary := f.Summary()
	require.NoError(t, f.Submit(ctx))

	// Assert
	assert.Equal(t, StageConfirmation, f.Stage())
	assert.Equal(t, "37.00", summary.Subtotal)
	assert.Equal(t, "8.00", summary.DeliveryFee)
	assert.Equal(t, "0.96", summary.TaxAmount)
	assert.Equal(t, "45.96", summary.Total)
	require.Len(t, submitter.requests, 1)
	req := submitter.requests[0]
	assert.Equal(t, "r-1", req.RestaurantID)
	assert.Equal(t, []api.OrderItemRequest{{MenuItemID: "m-1", Quantity: 2}}, req.Items)
	assert.Equal(t, "Abena", req.Guest.Name)
	assert.Zero(t, cart.Len())
	placed, ok := f.Placed()
	assert.True(t, ok)
	assert.Equal(t, "o-1", placed.ID)
	assert.ErrorIs(t, f.Back(), ErrWrongStage)
}

func TestSignedInCustomerSkipsIdentify(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.Add(jollof(1)))
	sess := session.New()
	sess.Login(api.LoginResponse{AccessToken: "tok", User: api.User{ID: "c-1", Email: "kwame@example.ch", Role: api.RoleCustomer}})
	f := New(cart, sess, &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}))

	require.NoError(t, f.Proceed())

	assert.Equal(t, StageDeliveryInfo, f.Stage())
	require.NoError(t, f.Back())
	assert.Equal(t, StageCart, f.Stage())
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart cannot proceed", func(t *testing.T) {
		f := New(NewCart(), session.New(), &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}))
		assert.ErrorIs(t, f.Proceed(), ErrEmptyCart)
		assert.Equal(t, StageCart, f.Stage())
	})

	t.Run("invalid guest stays on identify", func(t *testing.T) {
		cart := NewCart()
		require.NoError(t, cart.Add(jollof(1)))
		f := New(cart, session.New(), &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}))
		require.NoError(t, f.Proceed())

		assert.Error(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "not-an-email", Phone: "+41791234567"}))
		assert.ErrorIs(t, f.ContinueAsCustomer(), ErrNotLoggedIn)
		assert.Equal(t, StageIdentify, f.Stage())
	})

	t.Run("malformed postal code stays on delivery info", func(t *testing.T) {
		cart := NewCart()
		require.NoError(t, cart.Add(jollof(1)))
		f := New(cart, session.New(), &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}))
		require.NoError(t, f.Proceed())
		require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))

		err := f.SetDeliveryInfo(ctx, fees.Address{Street: "Rue 1", City: "Genève", PostalCode: "12"}, nil)
		assert.ErrorIs(t, err, fees.ErrInvalidPostalCode)
		assert.ErrorIs(t, f.SetDeliveryInfo(ctx, fees.Address{City: "Genève", PostalCode: "1204"}, nil), ErrIncompleteAddress)
		past := time.Now().Add(-time.Hour)
		assert.ErrorIs(t, f.SetDeliveryInfo(ctx, zurich, &past), ErrScheduleInPast)
		assert.Equal(t, StageDeliveryInfo, f.Stage())
	})

	t.Run("submit failure stays on payment", func(t *testing.T) {
		cart := NewCart()
		require.NoError(t, cart.Add(jollof(1)))
		submitter := &fakeSubmitter{err: errors.New("503")}
		f := New(cart, session.New(), submitter, fees.NewCalculator(offlineValidator{}))
		require.NoError(t, f.Proceed())
		require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))
		require.NoError(t, f.SetDeliveryInfo(ctx, zurich, nil))

		assert.ErrorIs(t, f.Submit(ctx), ErrNoPaymentMethod)
		assert.ErrorIs(t, f.ChoosePayment("bitcoin"), ErrInvalidPayment)
		require.NoError(t, f.ChoosePayment(api.PaymentCash))
		assert.Error(t, f.Submit(ctx))

		assert.Equal(t, StagePayment, f.Stage())
		assert.Equal(t, 1, cart.Len())
		assert.Error(t, f.Err())
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	cart := NewCart()
	require.NoError(t, cart.Add(jollof(1)))
	f := New(cart, session.New(), &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}))
	require.NoError(t, f.Proceed())
	require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))
	require.NoError(t, f.SetDeliveryInfo(ctx, zurich, nil))

	f.Reset()

	assert.Equal(t, StageCart, f.Stage())
	assert.True(t, f.Quote().Fee.IsZero())
	assert.Equal(t, 1, cart.Len())
}

func TestSummaryTaxRate(t *testing.T) {
	ctx := context.Background()
	cart := NewCart()
	require.NoError(t, cart.Add(jollof(2)))
	require.NoError(t, cart.Add(plantain()))
	f := New(cart, session.New(), &fakeSubmitter{}, fees.NewCalculator(offlineValidator{}), WithTaxRate(decimal.Zero))
	require.NoError(t, f.Proceed())
	require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))
	require.NoError(t, f.SetDeliveryInfo(ctx, zurich, nil))

	summary := f.Summary()

	assert.Equal(t, "0.00", summary.TaxAmount)
	assert.Equal(t, "51.00", summary.Total)
}

type slowSubmitter struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *slowSubmitter) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (orders.Order, error) {
	s.calls.Add(1)
	<-s.release
	return orders.Order{ID: "o-1", Status: orders.StatusNew, RestaurantID: req.RestaurantID}, nil
}

func TestSubmitTwiceWhileInFlight(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cart := NewCart()
	require.NoError(t, cart.Add(jollof(1)))
	submitter := &slowSubmitter{release: make(chan struct{})}
	f := New(cart, session.New(), submitter, fees.NewCalculator(offlineValidator{}))
	require.NoError(t, f.Proceed())
	require.NoError(t, f.ContinueAsGuest(api.Guest{Name: "Abena", Email: "abena@example.ch", Phone: "+41791234567"}))
	require.NoError(t, f.SetDeliveryInfo(ctx, zurich, nil))
	require.NoError(t, f.ChoosePayment(api.PaymentCard))

	// Act
	var wg sync.WaitGroup
	var first error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.Submit(ctx)
	}()
	require.Eventually(t, func() bool { return submitter.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := f.Submit(ctx)
	back := f.Back()
	close(submitter.release)
	wg.Wait()

	// Assert
	assert.ErrorIs(t, second, ErrBusy)
	assert.ErrorIs(t, back, ErrBusy)
	assert.NoError(t, first)
	assert.Equal(t, int32(1), submitter.calls.Load())
	assert.Equal(t, StageConfirmation, f.Stage())
}
