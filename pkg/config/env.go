package config

const EnvPrefix = "PRICING"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const (
	EnvAppEnv   = "PRICING_APP_ENV"
	EnvPort     = "PRICING_APP_PORT"
	EnvLogLevel = "PRICING_LOG_LEVEL"

	EnvDBDSN    = "PRICING_DB_DSN"
	EnvDBDriver = "PRICING_DB_DRIVER"
	EnvDBHost   = "PRICING_DB_HOST"
	EnvDBPort   = "PRICING_DB_PORT"
	EnvDBUser   = "PRICING_DB_USER"
	EnvDBPass   = "PRICING_DB_PASSWORD"
	EnvDBName   = "PRICING_DB_NAME"

	EnvRedisURL = "PRICING_REDIS_URL"

	EnvRateLimitWindow = "PRICING_RATE_LIMIT_WINDOW"
	EnvRateLimitIP     = "PRICING_RATE_LIMIT_IP_LIMIT"

	EnvCORSOrigins = "PRICING_CORS_ALLOWED_ORIGINS"

	EnvAutoMigrate = "PRICING_AUTO_MIGRATE"
	EnvSeedData    = "PRICING_SEED_DATA"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
