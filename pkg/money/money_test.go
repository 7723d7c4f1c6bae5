package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]string{
		"45":     "45.00",
		"2.675":  "2.68",
		"2.665":  "2.67",
		"0.005":  "0.01",
		"0.0049": "0",
		"13.5":   "13.50",
	}
	for in, want := range cases {
		got := RoundHalfUp(d(in))
		assert.Truef(t, got.Equal(d(want)), "RoundHalfUp(%s) = %s, want %s", in, got, want)
	}
}

func TestApplyRate(t *testing.T) {
	base := d("900")
	assert.True(t, ApplyRate(base, d("0.05")).Equal(d("45")))
	assert.True(t, ApplyRate(base, d("0.03")).Equal(d("27")))
	assert.True(t, ApplyRate(base, d("0.02")).Equal(d("18")))
	assert.True(t, ApplyRate(d("10.10"), d("0.05")).Equal(d("0.51")))
}

func TestFloorZero(t *testing.T) {
	assert.True(t, FloorZero(d("-1.25")).IsZero())
	assert.True(t, FloorZero(d("3.10")).Equal(d("3.1")))
}

func TestPointsConversions(t *testing.T) {
	assert.True(t, PointsToAmount(100, d("1")).Equal(d("100")))
	assert.True(t, PointsToAmount(3, d("0.5")).Equal(d("1.5")))

	assert.EqualValues(t, 18, FloorPoints(d("18.99"), d("1")))
	assert.EqualValues(t, 0, FloorPoints(d("-5"), d("1")))
	assert.EqualValues(t, 0, FloorPoints(d("5"), decimal.Zero))
	assert.EqualValues(t, 37, FloorPoints(d("18.5"), d("0.5")))
}

func TestLineTotalAndSum(t *testing.T) {
	total := Sum(LineTotal(d("199.90"), 3), LineTotal(d("0.10"), 1))
	assert.True(t, total.Equal(d("599.80")))
	assert.True(t, Equal(d("900"), d("900.001")))
	assert.False(t, Equal(d("900"), d("900.01")))
}
