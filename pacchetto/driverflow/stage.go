package driverflow

// Stage is the screen of the delivery flow a driver is on.
type Stage int

const (
	StageOrderList Stage = iota
	StageOrderDetails
	StagePickupDelivery
	StageConfirmPickup
	StageConfirmedPickup
	StageCustomerDelivery
	StageConfirmDelivery
	StageConfirmedDelivery
)

var stageNames = [...]string{
	"order_list",
	"order_details",
	"pickup_delivery",
	"confirm_pickup",
	"confirmed_pickup",
	"customer_delivery",
	"confirm_delivery",
	"confirmed_delivery",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Flags mirrors the stage as the seven view toggles of the driver portal.
// At most one is true.
type Flags struct {
	ShowOrderDetails      bool `json:"showOrderDetails"`
	ShowPickupDelivery    bool `json:"showPickupDelivery"`
	ShowConfirmPickup     bool `json:"showConfirmPickup"`
	ShowConfirmedPickup   bool `json:"showConfirmedPickup"`
	ShowCustomerDelivery  bool `json:"showCustomerDelivery"`
	ShowConfirmDelivery   bool `json:"showConfirmDelivery"`
	ShowConfirmedDelivery bool `json:"showConfirmedDelivery"`
}

func (s Stage) Flags() Flags {
	return Flags{
		ShowOrderDetails:      s == StageOrderDetails,
		ShowPickupDelivery:    s == StagePickupDelivery,
		ShowConfirmPickup:     s == StageConfirmPickup,
		ShowConfirmedPickup:   s == StageConfirmedPickup,
		ShowCustomerDelivery:  s == StageCustomerDelivery,
		ShowConfirmDelivery:   s == StageConfirmDelivery,
		ShowConfirmedDelivery: s == StageConfirmedDelivery,
	}
}

// Active counts the set flags.
func (f Flags) Active() int {
	n := 0
	for _, on := range []bool{
		f.ShowOrderDetails, f.ShowPickupDelivery, f.ShowConfirmPickup, f.ShowConfirmedPickup,
		f.ShowCustomerDelivery, f.ShowConfirmDelivery, f.ShowConfirmedDelivery,
	} {
		if on {
			n++
		}
	}
	return n
}
