package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Commission   CommissionConfig
	Points       PointsConfig
	Payouts      PayoutsConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Points.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Payouts.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ARCA_APP_ENV" required:"true"`
	Port         string   `envconfig:"ARCA_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ARCA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ARCA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ARCA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ServiceConfig identifies the binary. Workers expose /metrics on MetricsAddr when set.
type ServiceConfig struct {
	Kind        string `envconfig:"ARCA_SERVICE_KIND" default:"api"`
	MetricsAddr string `envconfig:"ARCA_METRICS_ADDR"`
}

type DBConfig struct {
	DSN    string `envconfig:"ARCA_DB_DSN"`
	Driver string `envconfig:"ARCA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARCA_DB_HOST"`
	LegacyPort     int    `envconfig:"ARCA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARCA_DB_USER"`
	LegacyPassword string `envconfig:"ARCA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARCA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARCA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARCA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARCA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARCA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARCA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARCA_REDIS_URL"`
	Address      string        `envconfig:"ARCA_REDIS_ADDR"`
	Password     string        `envconfig:"ARCA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARCA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARCA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARCA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARCA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARCA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARCA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARCA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARCA_JWT_ISSUER" default:"arca"`
	ExpirationMinutes int    `envconfig:"ARCA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ARCA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ARCA_AUTO_MIGRATE" default:"false"`
}

// CommissionConfig holds the per-tier commission rates applied to the payable base of a paid order.
type CommissionConfig struct {
	ConsultantRate   decimal.Decimal `envconfig:"ARCA_COMMISSION_CONSULTANT_RATE" default:"0.05"`
	Upline1Rate      decimal.Decimal `envconfig:"ARCA_COMMISSION_UPLINE1_RATE" default:"0.03"`
	Upline2Rate      decimal.Decimal `envconfig:"ARCA_COMMISSION_UPLINE2_RATE" default:"0.02"`
	EligibilityDelay time.Duration   `envconfig:"ARCA_COMMISSION_ELIGIBILITY_DELAY" default:"0s"`
}

func (c CommissionConfig) validate() error {
	rates := map[string]decimal.Decimal{
		EnvCommissionConsultantRate: c.ConsultantRate,
		EnvCommissionUpline1Rate:    c.Upline1Rate,
		EnvCommissionUpline2Rate:    c.Upline2Rate,
	}
	for env, rate := range rates {
		if err := validateRate(env, rate); err != nil {
			return err
		}
	}
	if c.EligibilityDelay < 0 {
		return fmt.Errorf("%s must not be negative", EnvCommissionEligibilityDelay)
	}
	return nil
}

// PointsConfig configures loyalty accrual and redemption.
type PointsConfig struct {
	RedeemCap  decimal.Decimal `envconfig:"ARCA_POINTS_REDEEM_CAP" default:"0.30"`
	PointValue decimal.Decimal `envconfig:"ARCA_POINTS_POINT_VALUE" default:"1"`
	BronzeRate decimal.Decimal `envconfig:"ARCA_POINTS_BRONZE_RATE" default:"0.02"`
	PrataRate  decimal.Decimal `envconfig:"ARCA_POINTS_PRATA_RATE" default:"0.05"`
	OuroRate   decimal.Decimal `envconfig:"ARCA_POINTS_OURO_RATE" default:"0.10"`
}

func (p PointsConfig) validate() error {
	rates := map[string]decimal.Decimal{
		EnvPointsRedeemCap:  p.RedeemCap,
		EnvPointsBronzeRate: p.BronzeRate,
		EnvPointsPrataRate:  p.PrataRate,
		EnvPointsOuroRate:   p.OuroRate,
	}
	for env, rate := range rates {
		if err := validateRate(env, rate); err != nil {
			return err
		}
	}
	if !p.PointValue.IsPositive() {
		return fmt.Errorf("%s must be positive", EnvPointsPointValue)
	}
	return nil
}

type PayoutsConfig struct {
	WindowDays           int    `envconfig:"ARCA_PAYOUTS_WINDOW_DAYS" default:"30"`
	ScheduledClaimStatus string `envconfig:"ARCA_PAYOUTS_SCHEDULED_CLAIM_STATUS" default:"locked"`
	DefaultMethod        string `envconfig:"ARCA_PAYOUTS_DEFAULT_METHOD" default:"mpesa"`
}

func (p PayoutsConfig) validate() error {
	if p.WindowDays <= 0 || p.WindowDays > 365 {
		return fmt.Errorf("%s must be between 1 and 365", EnvPayoutsWindowDays)
	}
	switch strings.ToLower(strings.TrimSpace(p.ScheduledClaimStatus)) {
	case "locked", "paid":
	default:
		return fmt.Errorf("%s must be locked or paid", EnvPayoutsScheduledClaimStatus)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ARCA_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"ARCA_CRON_LOCK_TTL" default:"25h"`
}

// RateLimitConfig throttles authenticated API traffic per user in fixed windows. Zero disables it.
type RateLimitConfig struct {
	Window time.Duration `envconfig:"ARCA_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"ARCA_RATE_LIMIT_REQUESTS" default:"120"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ARCA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"ARCA_PUBSUB_DOMAIN_TOPIC" default:"arca-domain-events"`
	DomainSubscription string `envconfig:"ARCA_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ARCA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ARCA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ARCA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"ARCA_OUTBOX_RETENTION_DAYS" default:"30"`
}

func validateRate(env string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1, got %s", env, rate.String())
	}
	return nil
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
