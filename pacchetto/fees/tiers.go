package fees

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

var ErrInvalidPostalCode = errors.New("postal code must be exactly 4 digits")

var (
	// DefaultFee applies until a complete address has been checked.
	DefaultFee = decimal.RequireFromString("6.00")
	// OutsideAreaFee applies to postal codes outside every tier.
	OutsideAreaFee = decimal.RequireFromString("10.00")
)

type tier struct {
	low, high int
	fee       decimal.Decimal
}

var tiers = []tier{
	{4000, 4999, decimal.RequireFromString("6.00")},
	{8000, 8999, decimal.RequireFromString("8.00")},
	{3000, 3999, decimal.RequireFromString("7.00")},
	{1200, 1299, decimal.RequireFromString("9.00")},
}

// ValidatePostalCode accepts exactly four ASCII digits.
func ValidatePostalCode(postalCode string) error {
	if len(postalCode) != 4 {
		return ErrInvalidPostalCode
	}
	for i := 0; i < len(postalCode); i++ {
		if postalCode[i] < '0' || postalCode[i] > '9' {
			return ErrInvalidPostalCode
		}
	}
	return nil
}

// Tier returns the fee of the tier holding postalCode. ok is false when the
// code is malformed or outside every tier.
func Tier(postalCode string) (fee decimal.Decimal, ok bool) {
	if ValidatePostalCode(postalCode) != nil {
		return decimal.Decimal{}, false
	}
	n, _ := strconv.Atoi(postalCode)
	for _, t := range tiers {
		if n >= t.low && n <= t.high {
			return t.fee, true
		}
	}
	return decimal.Decimal{}, false
}

// FallbackFee is the fee used when the address validator cannot answer.
func FallbackFee(postalCode string) decimal.Decimal {
	if fee, ok := Tier(postalCode); ok {
		return fee
	}
	return OutsideAreaFee
}
