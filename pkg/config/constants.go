package config

const (
	EnvPrefix = "ARCA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	defaultSQLiteDSN = "file:arca.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "ARCA_APP_ENV"
	EnvPort     = "ARCA_APP_PORT"
	EnvLogLevel = "ARCA_LOG_LEVEL"

	EnvDBDSN  = "ARCA_DB_DSN"
	EnvDBHost = "ARCA_DB_HOST"
	EnvDBUser = "ARCA_DB_USER"
	EnvDBName = "ARCA_DB_NAME"

	EnvRedisURL = "ARCA_REDIS_URL"

	EnvJWTSecret  = "ARCA_JWT_SECRET"
	EnvJWTIssuer  = "ARCA_JWT_ISSUER"
	EnvJWTExpMins = "ARCA_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "ARCA_USE_SQLITE"

	EnvCommissionConsultantRate   = "ARCA_COMMISSION_CONSULTANT_RATE"
	EnvCommissionUpline1Rate      = "ARCA_COMMISSION_UPLINE1_RATE"
	EnvCommissionUpline2Rate      = "ARCA_COMMISSION_UPLINE2_RATE"
	EnvCommissionEligibilityDelay = "ARCA_COMMISSION_ELIGIBILITY_DELAY"

	EnvPointsRedeemCap  = "ARCA_POINTS_REDEEM_CAP"
	EnvPointsPointValue = "ARCA_POINTS_POINT_VALUE"
	EnvPointsBronzeRate = "ARCA_POINTS_BRONZE_RATE"
	EnvPointsPrataRate  = "ARCA_POINTS_PRATA_RATE"
	EnvPointsOuroRate   = "ARCA_POINTS_OURO_RATE"

	EnvPayoutsWindowDays           = "ARCA_PAYOUTS_WINDOW_DAYS"
	EnvPayoutsScheduledClaimStatus = "ARCA_PAYOUTS_SCHEDULED_CLAIM_STATUS"

	EnvGCPProjectID      = "ARCA_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "ARCA_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "ARCA_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
