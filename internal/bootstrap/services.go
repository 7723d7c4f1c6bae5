// Package bootstrap assembles the settlement service graph shared by the api and cron binaries.
package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arcacommerce/arca-backend/internal/commissions"
	"github.com/arcacommerce/arca-backend/internal/orders"
	"github.com/arcacommerce/arca-backend/internal/payments"
	"github.com/arcacommerce/arca-backend/internal/payouts"
	"github.com/arcacommerce/arca-backend/internal/points"
	"github.com/arcacommerce/arca-backend/internal/products"
	"github.com/arcacommerce/arca-backend/internal/settlement"
	"github.com/arcacommerce/arca-backend/internal/users"
	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/metrics"
	"github.com/arcacommerce/arca-backend/pkg/outbox"
)

type Services struct {
	Users       users.Service
	Products    products.Service
	Points      points.Service
	Commissions commissions.Service
	Orders      orders.Service
	Payments    payments.Service
	Payouts     payouts.Service
	Settlement  settlement.Service
	Outbox      *outbox.Repository
}

// Build wires repositories and services over one database client. Settlement metrics
// register on reg when it is non-nil.
func Build(cfg *config.Config, client *db.Client, reg prometheus.Registerer, logg *logger.Logger) (*Services, error) {
	gdb := client.DB()
	rec := metrics.NewSettlementMetrics(reg)

	userRepo := users.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	commissionRepo := commissions.NewRepository(gdb)
	payoutRepo := payouts.NewRepository(gdb)
	outboxRepo := outbox.NewRepository(gdb)
	emitter := outbox.NewService(outboxRepo, logg)

	userSvc, err := users.NewService(userRepo)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}
	productSvc, err := products.NewService(productRepo)
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}
	pointsSvc, err := points.NewService(points.NewRepository(gdb), client)
	if err != nil {
		return nil, fmt.Errorf("points service: %w", err)
	}
	commissionSvc, err := commissions.NewService(commissionRepo, userRepo, commissions.RatesFromConfig(cfg.Commission), rec, logg)
	if err != nil {
		return nil, fmt.Errorf("commissions service: %w", err)
	}
	settlementSvc, err := settlement.NewService(payoutRepo, commissionRepo, client, emitter, cfg.Payouts, rec, logg)
	if err != nil {
		return nil, fmt.Errorf("settlement service: %w", err)
	}
	orderSvc, err := orders.NewService(orders.Deps{
		Repo:        orders.NewRepository(gdb),
		Products:    productRepo,
		Users:       userRepo,
		Ledger:      pointsSvc,
		Policy:      points.PolicyFromConfig(cfg.Points),
		Commissions: commissionSvc,
		Voider:      settlementSvc,
		Tx:          client,
		Outbox:      emitter,
		Metrics:     rec,
		Logger:      logg,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}
	paymentSvc, err := payments.NewService(orderSvc, payments.NewSimulatedGateway(), logg)
	if err != nil {
		return nil, fmt.Errorf("payments service: %w", err)
	}
	payoutSvc, err := payouts.NewService(payoutRepo, commissionRepo, client, emitter, cfg.Payouts, rec, logg)
	if err != nil {
		return nil, fmt.Errorf("payouts service: %w", err)
	}

	return &Services{
		Users:       userSvc,
		Products:    productSvc,
		Points:      pointsSvc,
		Commissions: commissionSvc,
		Orders:      orderSvc,
		Payments:    paymentSvc,
		Payouts:     payoutSvc,
		Settlement:  settlementSvc,
		Outbox:      outboxRepo,
	}, nil
}
