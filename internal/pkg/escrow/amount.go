package escrow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The stablecoin uses 6 decimals; everything inside the service is an int64
// count of these micro units. Decimal values exist only at the HTTP
// boundary.
const microUnits = 6

func ToMicro(amount decimal.Decimal) int64 {
	return amount.Shift(microUnits).Floor().IntPart()
}

func FromMicro(amount int64) decimal.Decimal {
	return decimal.New(amount, -microUnits)
}

// ParseAmount converts a boundary decimal string ("10.00") into micro
// units, rejecting non-positive values.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse amount %q: %w", value, err)
	}
	micro := ToMicro(d)
	if micro <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s", value)
	}
	return micro, nil
}

// FormatAmount renders micro units for display with two decimal places.
func FormatAmount(amount int64) string {
	return FromMicro(amount).StringFixed(2)
}
