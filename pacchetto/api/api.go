// Package api holds the request and response bodies of the order REST API,
// shared by the ordini service and its clients.
package api

import (
	"time"

	"github.com/taldoflemis/jollof/pacchetto/orders"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleDriver     Role = "driver"
	RoleAdmin      Role = "admin"
)

// Actor maps a role to the state machine actor it acts as.
func (r Role) Actor() orders.Actor {
	switch r {
	case RoleRestaurant:
		return orders.ActorRestaurant
	case RoleDriver:
		return orders.ActorDriver
	case RoleAdmin:
		return orders.ActorSystem
	default:
		return orders.ActorCustomer
	}
}

type User struct {
	ID           string `json:"id" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name"`
	Role         Role   `json:"role" validate:"required,oneof=customer restaurant driver admin"`
	RestaurantID string `json:"restaurantId,omitempty" validate:"required_if=Role restaurant"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken" validate:"required"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        User      `json:"user" validate:"required"`
}

type UpdateStatusRequest struct {
	Status orders.Status `json:"status" validate:"required,oneof=new confirmed preparing ready_for_pickup assigned in_transit delivered cancelled"`
}

type ConfirmPickupRequest struct {
	PickupCode string `json:"pickupCode" validate:"required"`
}

type ConfirmDeliveryRequest struct {
	DeliveryCode string `json:"deliveryCode" validate:"required"`
}

type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "card"
	PaymentTwint PaymentMethod = "twint"
	PaymentCash  PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentTwint || p == PaymentCash
}

// Guest identifies a customer checking out without an account.
type Guest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,e164"`
}

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
}

type CreateOrderRequest struct {
	RestaurantID          string             `json:"restaurantId" validate:"required"`
	Items                 []OrderItemRequest `json:"items" validate:"min=1,dive"`
	DeliveryAddress       string             `json:"deliveryAddress" validate:"required"`
	DeliveryCity          string             `json:"deliveryCity" validate:"required"`
	DeliveryPostalCode    string             `json:"deliveryPostalCode" validate:"required,len=4,numeric"`
	ScheduledDeliveryTime *time.Time         `json:"scheduledDeliveryTime,omitempty"`
	PaymentMethod         PaymentMethod      `json:"paymentMethod" validate:"required,oneof=card twint cash"`
	Guest                 *Guest             `json:"guest,omitempty" validate:"omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
