package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrTotalMismatch = errors.New("total amount does not match its components")

type Item struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"min=1"`
	Price    decimal.Decimal `json:"price"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID          string `json:"id" validate:"required"`
	OrderNumber string `json:"orderNumber" validate:"required"`
	Status      Status `json:"status" validate:"required,oneof=new confirmed preparing ready_for_pickup assigned in_transit delivered cancelled"`

	PickupCode   string `json:"pickupCode,omitempty"`
	DeliveryCode string `json:"deliveryCode,omitempty"`

	Items []Item `json:"items" validate:"dive"`
	Totals

	DeliveryAddress       string     `json:"deliveryAddress"`
	DeliveryCity          string     `json:"deliveryCity"`
	DeliveryPostalCode    string     `json:"deliveryPostalCode"`
	ScheduledDeliveryTime *time.Time `json:"scheduledDeliveryTime,omitempty"`

	RestaurantID   string  `json:"restaurantId" validate:"required"`
	RestaurantName string  `json:"restaurantName,omitempty"`
	CustomerID     string  `json:"customerId,omitempty"`
	CustomerName   string  `json:"customerName,omitempty"`
	DriverID       *string `json:"driverId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// orderFields has the same fields as Order without its JSON methods.
type orderFields Order

type orderJSON struct {
	orderFields
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	total := o.Total()
	return json.Marshal(orderJSON{orderFields: orderFields(o), TotalAmount: &total})
}

// UnmarshalJSON rejects payloads whose totalAmount disagrees with the components.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := Order(raw.orderFields)
	if raw.TotalAmount != nil && !raw.TotalAmount.Equal(decoded.Total()) {
		return fmt.Errorf("%w: order %s says %s, components sum to %s",
			ErrTotalMismatch, decoded.ID, raw.TotalAmount, decoded.Total())
	}
	*o = decoded
	return nil
}

// IsAssignedTo reports whether driverID holds the order.
func (o Order) IsAssignedTo(driverID string) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

// ForAudience returns a copy with the codes actor must not see removed.
// Restaurants see the pickup code while it is meaningful, customers see the
// delivery code, drivers see neither.
func (o Order) ForAudience(actor Actor) Order {
	out := o
	out.Items = append([]Item(nil), o.Items...)
	if actor != ActorRestaurant || !o.Status.PickupCodeVisible() {
		out.PickupCode = ""
	}
	if actor != ActorCustomer {
		out.DeliveryCode = ""
	}
	return out
}
