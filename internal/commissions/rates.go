package commissions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// maxUplineHops bounds the referral walk. It also keeps a cyclic chain finite.
const maxUplineHops = 2

// Rates are the per-tier percentages applied to an order's payable amount.
type Rates struct {
	Consultant       decimal.Decimal
	Upline1          decimal.Decimal
	Upline2          decimal.Decimal
	EligibilityDelay time.Duration
}

func RatesFromConfig(cfg config.CommissionConfig) Rates {
	return Rates{
		Consultant:       cfg.ConsultantRate,
		Upline1:          cfg.Upline1Rate,
		Upline2:          cfg.Upline2Rate,
		EligibilityDelay: cfg.EligibilityDelay,
	}
}

func DefaultRates() Rates {
	return Rates{
		Consultant: decimal.RequireFromString("0.05"),
		Upline1:    decimal.RequireFromString("0.03"),
		Upline2:    decimal.RequireFromString("0.02"),
	}
}

// uplineTiers maps the n-th referrer above the earner to its tier and rate.
func (r Rates) uplineTiers() []tier {
	return []tier{
		{kind: enums.CommissionUplineLevel1, rate: r.Upline1},
		{kind: enums.CommissionUplineLevel2, rate: r.Upline2},
	}
}

type tier struct {
	kind enums.CommissionType
	rate decimal.Decimal
}
