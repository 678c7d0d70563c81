package orders

import "time"

func ptr[T any](v T) *T { return &v }

func fixtureOrders() []Order {
	created := time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)
	return []Order{
		{
			ID: "o-1", OrderNumber: "ORD-20260314-0001", Status: StatusNew,
			DeliveryCode: "7312",
			Items: []Item{
				{Name: "Jollof rice", Quantity: 2, Price: CHF("18.50")},
				{Name: "Plantain", Quantity: 1, Price: CHF("6.00")},
			},
			Totals:       Totals{Subtotal: CHF("43.00"), DeliveryFee: CHF("6.00"), TaxAmount: CHF("1.12"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-2", OrderNumber: "ORD-20260314-0002", Status: StatusConfirmed,
			Items:        []Item{{Name: "Egusi soup", Quantity: 1, Price: CHF("24.00")}},
			Totals:       Totals{Subtotal: CHF("24.00"), DeliveryFee: CHF("8.00"), TaxAmount: CHF("0.62"), Discount: CHF("5.00")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-3", OrderNumber: "ORD-20260314-0003", Status: StatusPreparing,
			Items:        []Item{{Name: "Suya", Quantity: 3, Price: CHF("9.90")}},
			Totals:       Totals{Subtotal: CHF("29.70"), DeliveryFee: CHF("7.00"), TaxAmount: CHF("0.77"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-4", OrderNumber: "ORD-20260314-0004", Status: StatusReadyForPickup, PickupCode: "4821",
			Items:        []Item{{Name: "Injera platter", Quantity: 1, Price: CHF("32.00")}},
			Totals:       Totals{Subtotal: CHF("32.00"), DeliveryFee: CHF("9.00"), TaxAmount: CHF("0.83"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-5", OrderNumber: "ORD-20260314-0005", Status: StatusAssigned, PickupCode: "1111", DriverID: ptr("d-1"),
			Items:        []Item{{Name: "Thieboudienne", Quantity: 1, Price: CHF("27.50")}},
			Totals:       Totals{Subtotal: CHF("27.50"), DeliveryFee: CHF("6.00"), TaxAmount: CHF("0.72"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-6", OrderNumber: "ORD-20260314-0006", Status: StatusInTransit, PickupCode: "2222", DeliveryCode: "9090", DriverID: ptr("d-1"),
			Items:        []Item{{Name: "Mafé", Quantity: 2, Price: CHF("21.00")}},
			Totals:       Totals{Subtotal: CHF("42.00"), DeliveryFee: CHF("8.00"), TaxAmount: CHF("1.09"), Discount: CHF("2.50")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-7", OrderNumber: "ORD-20260314-0007", Status: StatusDelivered, DriverID: ptr("d-1"),
			Items:        []Item{{Name: "Fufu", Quantity: 1, Price: CHF("12.00")}},
			Totals:       Totals{Subtotal: CHF("12.00"), DeliveryFee: CHF("10.00"), TaxAmount: CHF("0.31"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
		{
			ID: "o-8", OrderNumber: "ORD-20260314-0008", Status: StatusCancelled,
			Items:        []Item{{Name: "Puff-puff", Quantity: 4, Price: CHF("2.50")}},
			Totals:       Totals{Subtotal: CHF("10.00"), DeliveryFee: CHF("6.00"), TaxAmount: CHF("0.26"), Discount: CHF("0")},
			RestaurantID: "r-1", CreatedAt: created,
		},
	}
}
