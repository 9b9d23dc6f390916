package payment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeCommission returns amount*rate/100 rounded to cents, half away from zero.
func ComputeCommission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}

// MinorUnits converts a decimal amount to the provider's integer minor units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
