package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taldoflemis/jollof/pacchetto/api"
	"github.com/taldoflemis/jollof/pacchetto/orders"
)

type userRecord struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Name         string  `gorm:"not null"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"not null"`
	RestaurantID *string `gorm:"size:36;index"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (u userRecord) toAPI() api.User {
	user := api.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: api.Role(u.Role)}
	if u.RestaurantID != nil {
		user.RestaurantID = *u.RestaurantID
	}
	return user
}

type restaurantRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	City      string
	CreatedAt time.Time
}

func (restaurantRecord) TableName() string { return "restaurants" }

type menuItemRecord struct {
	ID           string          `gorm:"primaryKey;size:36"`
	RestaurantID string          `gorm:"size:36;index;not null"`
	Name         string          `gorm:"not null"`
	Category     string          `gorm:"index"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Available    bool            `gorm:"not null;default:true"`
}

func (menuItemRecord) TableName() string { return "menu_items" }

// orderSequenceRecord holds the last order number handed out on a day.
type orderSequenceRecord struct {
	Day     string `gorm:"primaryKey;size:8"`
	Counter int    `gorm:"not null"`
}

func (orderSequenceRecord) TableName() string { return "order_sequences" }

type orderRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	OrderNumber  string `gorm:"uniqueIndex;not null"`
	Status       string `gorm:"index;not null"`
	PickupCode   string `gorm:"size:4"`
	DeliveryCode string `gorm:"size:4;not null"`

	Items       []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal    decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	DeliveryFee decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	TaxAmount   decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	Discount    decimal.Decimal   `gorm:"type:decimal(10,2);not null"`

	DeliveryAddress       string `gorm:"not null"`
	DeliveryCity          string `gorm:"not null"`
	DeliveryPostalCode    string `gorm:"size:4;not null"`
	ScheduledDeliveryTime *time.Time
	PaymentMethod         string `gorm:"not null"`

	RestaurantID   string  `gorm:"size:36;index;not null"`
	RestaurantName string  `gorm:"not null"`
	CustomerID     *string `gorm:"size:36;index"`
	CustomerName   string  `gorm:"not null"`
	GuestEmail     string
	GuestPhone     string
	DriverID       *string `gorm:"size:36;index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	OrderID    string          `gorm:"size:36;index;not null"`
	Position   int             `gorm:"not null"`
	MenuItemID string          `gorm:"size:36;not null"`
	Name       string          `gorm:"not null"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func (r orderRecord) toOrder() orders.Order {
	o := orders.Order{
		ID:           r.ID,
		OrderNumber:  r.OrderNumber,
		Status:       orders.Status(r.Status),
		PickupCode:   r.PickupCode,
		DeliveryCode: r.DeliveryCode,
		Items:        make([]orders.Item, 0, len(r.Items)),
		Totals: orders.Totals{
			Subtotal:    r.Subtotal,
			DeliveryFee: r.DeliveryFee,
			TaxAmount:   r.TaxAmount,
			Discount:    r.Discount,
		},
		DeliveryAddress:       r.DeliveryAddress,
		DeliveryCity:          r.DeliveryCity,
		DeliveryPostalCode:    r.DeliveryPostalCode,
		ScheduledDeliveryTime: r.ScheduledDeliveryTime,
		RestaurantID:          r.RestaurantID,
		RestaurantName:        r.RestaurantName,
		CustomerName:          r.CustomerName,
		DriverID:              r.DriverID,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
	if r.CustomerID != nil {
		o.CustomerID = *r.CustomerID
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, orders.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return o
}
