package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/fees"
	"github.com/taldoflemis/jollof/pacchetto/orders"
)

var (
	tracer = otel.Tracer("ordini")
	meter  = otel.Meter("ordini")
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrGuestRequired   = errors.New("guest details are required without an account")
	ErrUnknownMenuItem = errors.New("menu item not offered by this restaurant")
	ErrUndeliverable   = errors.New("address is outside the delivery area")
)

// OrderService owns every change to an order.
type OrderService struct {
	store    *GormStore
	events   EventPublisher
	machine  *orders.Machine
	settings OrdiniSettings
	now      func() time.Time

	transitionCounter metric.Int64Counter
	rejectedCounter   metric.Int64Counter
	createdCounter    metric.Int64Counter
}

func NewOrderService(store *GormStore, events EventPublisher, settings OrdiniSettings) (*OrderService, error) {
	ctx := context.Background()

	transitionCounter, err := meter.Int64Counter(
		"ordini.order.transitions",
		metric.WithDescription("Number of order status changes applied"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create transition counter", slog.Any("err", err))
		return nil, err
	}

	rejectedCounter, err := meter.Int64Counter(
		"ordini.order.transition.rejected",
		metric.WithDescription("Number of order status changes refused"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create rejected transition counter", slog.Any("err", err))
		return nil, err
	}

	createdCounter, err := meter.Int64Counter(
		"ordini.order.created",
		metric.WithDescription("Number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create order counter", slog.Any("err", err))
		return nil, err
	}

	return &OrderService{
		store:             store,
		events:            events,
		machine:           orders.NewMachine(func() string { return pacchetto.RandomDigits(4) }),
		settings:          settings,
		now:               time.Now,
		transitionCounter: transitionCounter,
		rejectedCounter:   rejectedCounter,
		createdCounter:    createdCounter,
	}, nil
}

// Get returns an order the user may see, with the codes they may not see removed.
func (s *OrderService) Get(ctx context.Context, user api.User, orderID string) (orders.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if !canView(user, o) {
		return orders.Order{}, ErrForbidden
	}
	return o.ForAudience(user.Role.Actor()), nil
}

func canView(user api.User, o orders.Order) bool {
	switch user.Role {
	case api.RoleAdmin:
		return true
	case api.RoleRestaurant:
		return user.RestaurantID == o.RestaurantID
	case api.RoleDriver:
		return o.IsAssignedTo(user.ID) || (o.Status == orders.StatusReadyForPickup && o.DriverID == nil)
	case api.RoleCustomer:
		return o.CustomerID != "" && o.CustomerID == user.ID
	}
	return false
}

func (s *OrderService) ListRestaurantOrders(ctx context.Context, user api.User, restaurantID string) ([]orders.Order, error) {
	if user.Role != api.RoleAdmin && (user.Role != api.RoleRestaurant || user.RestaurantID != restaurantID) {
		return nil, ErrForbidden
	}
	list, err := s.store.ListOrders(ctx, "restaurant_id = ?", restaurantID)
	return audience(list, user), err
}

func (s *OrderService) ListDriverOrders(ctx context.Context, user api.User, driverID string) ([]orders.Order, error) {
	if user.Role != api.RoleAdmin && (user.Role != api.RoleDriver || user.ID != driverID) {
		return nil, ErrForbidden
	}
	list, err := s.store.ListOrders(ctx, "driver_id = ?", driverID)
	return audience(list, user), err
}

func (s *OrderService) ListAvailableOrders(ctx context.Context, user api.User) ([]orders.Order, error) {
	list, err := s.store.ListOrders(ctx, "status = ? AND driver_id IS NULL", string(orders.StatusReadyForPickup))
	return audience(list, user), err
}

func audience(list []orders.Order, user api.User) []orders.Order {
	for i := range list {
		list[i] = list[i].ForAudience(user.Role.Actor())
	}
	return list
}

// UpdateStatus applies a restaurant transition.
func (s *OrderService) UpdateStatus(ctx context.Context, user api.User, orderID string, to orders.Status) (orders.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if user.Role != api.RoleRestaurant || user.RestaurantID != o.RestaurantID {
		return orders.Order{}, ErrForbidden
	}
	return s.transition(ctx, user, o, to, orders.Proof{})
}

// Accept assigns a ready order to the driver. Of two drivers racing for the
// same order, the second gets ErrConflict.
func (s *OrderService) Accept(ctx context.Context, user api.User, driverID, orderID string) (orders.Order, error) {
	if user.Role != api.RoleDriver || user.ID != driverID {
		return orders.Order{}, ErrForbidden
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	return s.transition(ctx, user, o, orders.StatusAssigned, orders.Proof{DriverID: driverID})
}

func (s *OrderService) ConfirmPickup(ctx context.Context, user api.User, orderID, code string) (orders.Order, error) {
	return s.driverStep(ctx, user, orderID, orders.StatusInTransit, code)
}

func (s *OrderService) ConfirmDelivery(ctx context.Context, user api.User, orderID, code string) (orders.Order, error) {
	return s.driverStep(ctx, user, orderID, orders.StatusDelivered, code)
}

func (s *OrderService) driverStep(ctx context.Context, user api.User, orderID string, to orders.Status, code string) (orders.Order, error) {
	if user.Role != api.RoleDriver {
		return orders.Order{}, ErrForbidden
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if !o.IsAssignedTo(user.ID) {
		return orders.Order{}, ErrForbidden
	}
	return s.transition(ctx, user, o, to, orders.Proof{DriverID: user.ID, Code: code})
}

func (s *OrderService) transition(ctx context.Context, user api.User, o orders.Order, to orders.Status, proof orders.Proof) (orders.Order, error) {
	actor := user.Role.Actor()
	attrs := []attribute.KeyValue{
		attribute.String("jollof.actor", string(actor)),
		attribute.String("jollof.from", string(o.Status)),
		attribute.String("jollof.to", string(to)),
	}
	ctx, span := tracer.Start(ctx, "OrderService.transition", trace.WithAttributes(
		append(attrs, attribute.String("jollof.order_id", o.ID))...,
	))
	defer span.End()

	next := o
	if err := s.machine.Apply(&next, actor, to, proof); err != nil {
		s.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
		slog.WarnContext(ctx, "order transition refused",
			slog.String("order_id", o.ID), slog.String("actor", string(actor)),
			slog.String("from", string(o.Status)), slog.String("to", string(to)), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition refused")
		return orders.Order{}, err
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateStatus(ctx, o, next); err != nil {
		if errors.Is(err, ErrConflict) {
			s.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return orders.Order{}, err
	}

	s.transitionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	slog.InfoContext(ctx, "order status changed",
		slog.String("order_id", o.ID), slog.String("from", string(o.Status)), slog.String("to", string(to)))
	s.publish(ctx, orders.NewEvent(uuid.NewString(), next, actor, o.Status, next.UpdatedAt))

	return next.ForAudience(actor), nil
}

// Create prices the request from the menu and stores a new order.
func (s *OrderService) Create(ctx context.Context, user *api.User, req api.CreateOrderRequest) (orders.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.String("jollof.restaurant_id", req.RestaurantID),
	))
	defer span.End()

	if user == nil && req.Guest == nil {
		return orders.Order{}, ErrGuestRequired
	}
	if user != nil && user.Role != api.RoleCustomer {
		return orders.Order{}, ErrForbidden
	}

	restaurant, err := s.store.FindRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return orders.Order{}, err
	}

	fee, ok := fees.Tier(req.DeliveryPostalCode)
	if !ok {
		return orders.Order{}, fmt.Errorf("%w: %s", ErrUndeliverable, req.DeliveryPostalCode)
	}

	ids := make([]string, len(req.Items))
	for i, it := range req.Items {
		ids[i] = it.MenuItemID
	}
	menu, err := s.store.MenuItems(ctx, restaurant.ID, ids)
	if err != nil {
		return orders.Order{}, err
	}

	now := s.now().UTC()
	rec := orderRecord{
		ID:                    uuid.NewString(),
		Status:                string(orders.StatusNew),
		DeliveryCode:          pacchetto.RandomDigits(4),
		DeliveryAddress:       strings.TrimSpace(req.DeliveryAddress),
		DeliveryCity:          strings.TrimSpace(req.DeliveryCity),
		DeliveryPostalCode:    req.DeliveryPostalCode,
		ScheduledDeliveryTime: req.ScheduledDeliveryTime,
		PaymentMethod:         string(req.PaymentMethod),
		RestaurantID:          restaurant.ID,
		RestaurantName:        restaurant.Name,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if user != nil {
		rec.CustomerID = &user.ID
		rec.CustomerName = user.Name
	} else {
		rec.CustomerName = req.Guest.Name
		rec.GuestEmail = req.Guest.Email
		rec.GuestPhone = req.Guest.Phone
	}

	items := make([]orders.Item, 0, len(req.Items))
	for i, it := range req.Items {
		m, ok := menu[it.MenuItemID]
		if !ok || !m.Available {
			return orders.Order{}, fmt.Errorf("%w: %s", ErrUnknownMenuItem, it.MenuItemID)
		}
		items = append(items, orders.Item{Name: m.Name, Quantity: it.Quantity, Price: m.Price})
		rec.Items = append(rec.Items, orderItemRecord{
			Position:   i,
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   it.Quantity,
			Price:      m.Price,
		})
	}

	totals := orders.ComputeTotals(items, fee, s.settings.Tax(), decimal.Zero)
	rec.Subtotal = totals.Subtotal
	rec.DeliveryFee = totals.DeliveryFee
	rec.TaxAmount = totals.TaxAmount
	rec.Discount = totals.Discount

	if err := s.store.CreateOrder(ctx, &rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return orders.Order{}, err
	}

	o := rec.toOrder()
	s.createdCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("jollof.restaurant_id", o.RestaurantID)))
	slog.InfoContext(ctx, "order placed", slog.String("order_id", o.ID), slog.String("order_number", o.OrderNumber))
	s.publish(ctx, orders.NewEvent(uuid.NewString(), o, orders.ActorCustomer, "", now))

	return o.ForAudience(orders.ActorCustomer), nil
}

// Earnings sums the commission of a driver's delivered orders.
func (s *OrderService) Earnings(ctx context.Context, user api.User, driverID string) (orders.Earnings, error) {
	if user.Role != api.RoleAdmin && (user.Role != api.RoleDriver || user.ID != driverID) {
		return orders.Earnings{}, ErrForbidden
	}
	list, err := s.store.ListOrders(ctx, "driver_id = ? AND status = ?", driverID, string(orders.StatusDelivered))
	if err != nil {
		return orders.Earnings{}, err
	}
	return orders.DriverEarnings(list, driverID, s.settings.Commission()), nil
}

// publish never fails the request; the order change is already stored.
func (s *OrderService) publish(ctx context.Context, event orders.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish order event", slog.String("order_id", event.OrderID), slog.Any("err", err))
	}
}

// ValidateAddress answers whether an address can be delivered to and at
// which fee.
func ValidateAddress(addr fees.Address) fees.Validation {
	if !addr.Complete() {
		return fees.Validation{Valid: false, DeliveryFee: fees.DefaultFee, Message: "street, city and postal code are required"}
	}
	postalCode := strings.TrimSpace(addr.PostalCode)
	if err := fees.ValidatePostalCode(postalCode); err != nil {
		return fees.Validation{Valid: false, DeliveryFee: fees.DefaultFee, Message: err.Error()}
	}
	fee, ok := fees.Tier(postalCode)
	if !ok {
		return fees.Validation{
			Valid:       false,
			DeliveryFee: fees.OutsideAreaFee,
			Message:     fmt.Sprintf("we do not deliver to %s %s yet", postalCode, strings.TrimSpace(addr.City)),
		}
	}
	return fees.Validation{Valid: true, DeliveryFee: fee}
}
