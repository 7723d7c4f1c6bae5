package bootstrap

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcacommerce/arca-backend/internal/orders"
	"github.com/arcacommerce/arca-backend/internal/payments"
	"github.com/arcacommerce/arca-backend/internal/settlement"
	"github.com/arcacommerce/arca-backend/pkg/auth"
	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db/dbtest"
	"github.com/arcacommerce/arca-backend/pkg/enums"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Commission: config.CommissionConfig{
			ConsultantRate: decimal.RequireFromString("0.05"),
			Upline1Rate:    decimal.RequireFromString("0.03"),
			Upline2Rate:    decimal.RequireFromString("0.02"),
		},
		Points: config.PointsConfig{
			RedeemCap:  decimal.RequireFromString("0.30"),
			PointValue: decimal.NewFromInt(1),
			BronzeRate: decimal.RequireFromString("0.02"),
			PrataRate:  decimal.RequireFromString("0.05"),
			OuroRate:   decimal.RequireFromString("0.10"),
		},
		Payouts: config.PayoutsConfig{WindowDays: 30, ScheduledClaimStatus: "locked"},
	}
}

func TestBuildSettlesAnOrderThroughPayout(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	reg := prometheus.NewRegistry()

	svcs, err := Build(testConfig(), conn, reg, logger.Nop())
	require.NoError(t, err)

	consultant := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithRole(enums.UserRoleConsultant))
	buyer := dbtest.MustCreateUser(t, conn.DB(), dbtest.WithDefaultConsultant(consultant))
	product := dbtest.MustCreateProduct(t, conn.DB(), "100.00", 5)

	order, err := svcs.Orders.CreateOrder(ctx, orders.CreateOrderInput{
		BuyerID: buyer.ID,
		Items:   []orders.LineInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	buyerActor := auth.Actor{UserID: buyer.ID, Role: enums.UserRoleCustomer}
	paid, err := svcs.Payments.ConfirmOrderPayment(ctx, buyerActor, order.ID, payments.ConfirmInput{
		Amount: order.PayableAmount,
		Method: enums.PaymentMethodMpesa,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, paid.Status)

	admin := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	result, err := svcs.Payouts.GenerateTrailing(ctx, admin, 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.PayoutsCreated)
	assert.True(t, result.Payouts[0].Amount.Equal(decimal.RequireFromString("10.00")))

	settled, err := svcs.Settlement.MarkPayoutPaid(ctx, admin, result.Payouts[0].ID, settlement.MarkPaidInput{
		Method:    enums.PaymentMethodMpesa,
		Reference: "MP-001",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PayoutStatePaid, settled.State)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
