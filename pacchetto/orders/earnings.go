package orders

import "github.com/shopspring/decimal"

// Earnings summarises what a driver made from delivered orders.
type Earnings struct {
	DriverID     string          `json:"driverId"`
	Deliveries   int             `json:"deliveries"`
	DeliveryFees decimal.Decimal `json:"deliveryFees"`
	Commission   decimal.Decimal `json:"commission"`
}

// DriverEarnings pays the driver commissionRate of the delivery fee of every
// delivered order they carried.
func DriverEarnings(list []Order, driverID string, commissionRate decimal.Decimal) Earnings {
	e := Earnings{DriverID: driverID, DeliveryFees: decimal.Zero}
	for _, o := range list {
		if o.Status != StatusDelivered || !o.IsAssignedTo(driverID) {
			continue
		}
		e.Deliveries++
		e.DeliveryFees = e.DeliveryFees.Add(o.DeliveryFee)
	}
	e.Commission = e.DeliveryFees.Mul(commissionRate).Round(2)
	return e
}
