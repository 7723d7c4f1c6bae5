// Package money holds the monetary rules shared by orders, points, commissions and payouts.
// All amounts are shopspring decimals with two fractional digits.
package money

import "github.com/shopspring/decimal"

// Places is the minor-unit precision of every stored amount.
const Places int32 = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// RoundHalfUp rounds to the minor unit, ties away from zero.
func RoundHalfUp(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// ApplyRate returns base * rate rounded to the minor unit.
func ApplyRate(base, rate decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(base.Mul(rate))
}

// FloorZero clamps negative amounts to zero.
func FloorZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Sum adds the amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}

// LineTotal is unitPrice * quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// PointsToAmount converts points into currency at pointValue per point.
func PointsToAmount(points int64, pointValue decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(decimal.NewFromInt(points).Mul(pointValue))
}

// FloorPoints returns how many whole points amount is worth at pointValue per point.
// Fractions are dropped. A non-positive amount or pointValue yields zero.
func FloorPoints(amount, pointValue decimal.Decimal) int64 {
	if !amount.IsPositive() || !pointValue.IsPositive() {
		return 0
	}
	return amount.Div(pointValue).Floor().IntPart()
}

// Equal compares two amounts at minor-unit precision.
func Equal(a, b decimal.Decimal) bool {
	return RoundHalfUp(a).Equal(RoundHalfUp(b))
}
