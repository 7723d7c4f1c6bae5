package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcacommerce/arca-backend/api/controllers"
	ordercontrollers "github.com/arcacommerce/arca-backend/api/controllers/orders"
	"github.com/arcacommerce/arca-backend/api/middleware"
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
	"github.com/arcacommerce/arca-backend/pkg/redis"
)

// RedisStore backs idempotency replay, rate limiting and the readiness probe.
// A nil store disables the first two.
type RedisStore interface {
	redis.IdempotencyStore
	redis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       RedisStore
	Gatherer    prometheus.Gatherer
	Users       users.Service
	Products    products.Service
	Orders      orders.Service
	Payments    payments.Service
	Points      points.Service
	Commissions commissions.Service
	Payouts     payouts.Service
	Settlement  settlement.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        RedisStore
		redisPinger      redis.Pinger
	)
	if deps.Redis != nil {
		idempotencyStore, rateStore, redisPinger = deps.Redis, deps.Redis, deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	apiLimit := middleware.NewRateLimitPolicy("api", cfg.RateLimit.Window, cfg.RateLimit.Limit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(apiLimit, rateStore, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserMe(deps.Users, logg))
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", controllers.UserDetail(deps.Users, logg))
				r.Get("/referrals", controllers.UserReferrals(deps.Users, logg))
				r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
				r.Get("/points", controllers.PointsHistory(deps.Points, logg))
				r.Get("/points/reconcile", controllers.PointsReconcile(deps.Points, logg))
				r.Get("/commissions", controllers.CommissionList(deps.Commissions, logg))
				r.Get("/commissions/summary", controllers.CommissionSummary(deps.Commissions, logg))
				r.Get("/payouts", controllers.PayoutList(deps.Payouts, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Post("/{orderId}/payments", ordercontrollers.ConfirmPayment(deps.Payments, logg))
		})

		r.Get("/payouts/{payoutId}", controllers.PayoutDetail(deps.Payouts, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireBackOffice(logg))
		r.Use(middleware.RateLimit(apiLimit, rateStore, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.AdminUserCreate(deps.Users, logg))
			r.Patch("/{userId}", controllers.AdminUserUpdate(deps.Users, logg))
			r.Post("/{userId}/points/adjust", controllers.AdminPointsAdjust(deps.Points, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Post("/{productId}/restock", controllers.AdminProductRestock(deps.Products, logg))
		})

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Post("/cancel", ordercontrollers.Cancel(deps.Orders, logg))
			r.Post("/fulfillment", ordercontrollers.AdvanceFulfillment(deps.Orders, logg))
		})

		r.Get("/commissions", controllers.AdminCommissionList(deps.Commissions, logg))

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.AdminPayoutList(deps.Payouts, logg))
			r.Post("/generate", controllers.AdminPayoutGenerate(deps.Payouts, logg))
			r.Post("/{payoutId}/mark-paid", controllers.AdminPayoutMarkPaid(deps.Settlement, logg))
		})
	})

	return r
}
