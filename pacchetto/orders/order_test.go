package orders

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalEqualsComponentsForFixtures(t *testing.T) {
	for _, o := range fixtureOrders() {
		want := o.Subtotal.Add(o.DeliveryFee).Add(o.TaxAmount).Sub(o.Discount)
		assert.True(t, want.Equal(o.Total()), "order %s: %s != %s", o.ID, want, o.Total())
	}
}

func TestComputeTotals(t *testing.T) {
	items := []Item{
		{Name: "Jollof rice", Quantity: 2, Price: CHF("18.50")},
		{Name: "Plantain", Quantity: 1, Price: CHF("6.00")},
	}

	t.Run("prices items and applies tax", func(t *testing.T) {
		totals := ComputeTotals(items, CHF("6.00"), CHF("0.026"), CHF("0"))

		assert.Equal(t, "43.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "1.12", totals.TaxAmount.StringFixed(2))
		assert.Equal(t, "50.12", totals.Total().StringFixed(2))
	})

	t.Run("discount is capped at the subtotal", func(t *testing.T) {
		totals := ComputeTotals(items, CHF("6.00"), CHF("0"), CHF("100"))

		assert.Equal(t, "43.00", totals.Discount.StringFixed(2))
		assert.Equal(t, "6.00", totals.Total().StringFixed(2))
	})
}

func TestOrderJSON(t *testing.T) {
	t.Run("totalAmount is written from the components", func(t *testing.T) {
		o := fixtureOrders()[1]

		data, err := json.Marshal(o)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, 27.62, raw["totalAmount"])
		assert.Equal(t, "confirmed", raw["status"])
		assert.Equal(t, 24.0, raw["subtotal"])
	})

	t.Run("decoding keeps item order", func(t *testing.T) {
		o := fixtureOrders()[0]
		data, err := json.Marshal(o)
		require.NoError(t, err)

		var decoded Order
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, []string{"Jollof rice", "Plantain"}, []string{decoded.Items[0].Name, decoded.Items[1].Name})
		assert.True(t, o.Total().Equal(decoded.Total()))
	})

	t.Run("inconsistent totalAmount is rejected", func(t *testing.T) {
		payload := `{"id":"o-9","orderNumber":"ORD-1","status":"new","restaurantId":"r-1","items":[],
			"subtotal":10,"deliveryFee":6,"taxAmount":0,"discount":0,"totalAmount":99}`

		var decoded Order
		err := json.Unmarshal([]byte(payload), &decoded)
		assert.ErrorIs(t, err, ErrTotalMismatch)
	})

	t.Run("validator accepts fixtures and rejects unknown status", func(t *testing.T) {
		validate := validator.New()
		for _, o := range fixtureOrders() {
			assert.NoError(t, validate.Struct(o), o.ID)
		}

		bad := fixtureOrders()[0]
		bad.Status = "picked_up"
		assert.Error(t, validate.Struct(bad))
	})
}

func TestForAudience(t *testing.T) {
	o := Order{ID: "o", Status: StatusAssigned, PickupCode: "4821", DeliveryCode: "9090"}

	restaurant := o.ForAudience(ActorRestaurant)
	assert.Equal(t, "4821", restaurant.PickupCode)
	assert.Empty(t, restaurant.DeliveryCode)

	driver := o.ForAudience(ActorDriver)
	assert.Empty(t, driver.PickupCode)
	assert.Empty(t, driver.DeliveryCode)

	customer := o.ForAudience(ActorCustomer)
	assert.Empty(t, customer.PickupCode)
	assert.Equal(t, "9090", customer.DeliveryCode)

	o.Status = StatusDelivered
	assert.Empty(t, o.ForAudience(ActorRestaurant).PickupCode)
}
