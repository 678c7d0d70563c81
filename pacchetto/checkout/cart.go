package checkout

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrRestaurantMismatch = errors.New("cart already holds items of another restaurant")
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

type CartItem struct {
	MenuItemID     string          `json:"menuItemId" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity" validate:"min=1"`
	RestaurantID   string          `json:"restaurantId" validate:"required"`
	RestaurantName string          `json:"restaurantName"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the items of a single restaurant in the order they were added.
type Cart struct {
	mu    sync.RWMutex
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts item in the cart, or raises the quantity of the same menu item.
func (c *Cart) Add(item CartItem) error {
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) > 0 && c.items[0].RestaurantID != item.RestaurantID {
		return fmt.Errorf("%w: %s", ErrRestaurantMismatch, c.items[0].RestaurantName)
	}
	if i := c.indexLocked(item.MenuItemID); i >= 0 {
		c.items[i].Quantity += item.Quantity
		return nil
	}
	c.items = append(c.items, item)
	return nil
}

// SetQuantity changes the quantity of a menu item. Zero removes it.
func (c *Cart) SetQuantity(menuItemID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(menuItemID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotInCart, menuItemID)
	}
	if quantity == 0 {
		c.items = slices.Delete(c.items, i, i+1)
		return nil
	}
	c.items[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(menuItemID string) error {
	return c.SetQuantity(menuItemID, 0)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Cart) Items() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// RestaurantID is empty for an empty cart.
func (c *Cart) RestaurantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].RestaurantID
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) indexLocked(menuItemID string) int {
	return slices.IndexFunc(c.items, func(it CartItem) bool { return it.MenuItemID == menuItemID })
}
