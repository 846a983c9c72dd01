package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount returns quantity × price, the cash value of a fill.
func Amount(quantity int64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity))
}

// ParseAmount parses a monetary value such as "200" or "148.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
