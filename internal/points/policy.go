package points

import (
	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/money"
)

// Policy holds the loyalty rates applied to orders.
type Policy struct {
	RedeemCap  decimal.Decimal
	PointValue decimal.Decimal
	EarnRates  map[enums.UserLevel]decimal.Decimal
}

func PolicyFromConfig(cfg config.PointsConfig) Policy {
	return Policy{
		RedeemCap:  cfg.RedeemCap,
		PointValue: cfg.PointValue,
		EarnRates: map[enums.UserLevel]decimal.Decimal{
			enums.UserLevelBronze: cfg.BronzeRate,
			enums.UserLevelPrata:  cfg.PrataRate,
			enums.UserLevelOuro:   cfg.OuroRate,
		},
	}
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		RedeemCap:  decimal.RequireFromString("0.30"),
		PointValue: decimal.NewFromInt(1),
		EarnRates: map[enums.UserLevel]decimal.Decimal{
			enums.UserLevelBronze: decimal.RequireFromString("0.02"),
			enums.UserLevelPrata:  decimal.RequireFromString("0.05"),
			enums.UserLevelOuro:   decimal.RequireFromString("0.10"),
		},
	}
}

// MaxRedeemable is the lesser of balance and the cap share of total, in whole points.
func (p Policy) MaxRedeemable(balance int64, total decimal.Decimal) int64 {
	capped := money.FloorPoints(total.Mul(p.RedeemCap), p.PointValue)
	if balance < capped {
		capped = balance
	}
	if capped < 0 {
		return 0
	}
	return capped
}

// Discount converts redeemed points into currency.
func (p Policy) Discount(points int64) decimal.Decimal {
	return money.PointsToAmount(points, p.PointValue)
}

// Earned returns the whole points earned on payable at the level's rate.
func (p Policy) Earned(level enums.UserLevel, payable decimal.Decimal) int64 {
	rate, ok := p.EarnRates[level]
	if !ok {
		return 0
	}
	return money.FloorPoints(payable.Mul(rate), p.PointValue)
}
