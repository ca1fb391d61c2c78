package config

const (
	EnvPrefix = "STOCKROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:stockroom.db?_busy_timeout=5000&_txlock=immediate"
)

const (
	EnvAppEnv      = "STOCKROOM_APP_ENV"
	EnvPort        = "STOCKROOM_APP_PORT"
	EnvLogLevel    = "STOCKROOM_LOG_LEVEL"
	EnvServiceKind = "STOCKROOM_SERVICE_KIND"

	EnvDBDSN    = "STOCKROOM_DB_DSN"
	EnvDBDriver = "STOCKROOM_DB_DRIVER"
	EnvDBHost   = "STOCKROOM_DB_HOST"
	EnvDBPort   = "STOCKROOM_DB_PORT"
	EnvDBUser   = "STOCKROOM_DB_USER"
	EnvDBPass   = "STOCKROOM_DB_PASSWORD"
	EnvDBName   = "STOCKROOM_DB_NAME"

	EnvRedisURL = "STOCKROOM_REDIS_URL"

	EnvUseSQLite   = "STOCKROOM_USE_SQLITE"
	EnvAutoMigrate = "STOCKROOM_AUTO_MIGRATE"

	EnvRequisitionCodePrefix     = "STOCKROOM_REQUISITION_CODE_PREFIX"
	EnvRequisitionIdempotencyTTL = "STOCKROOM_REQUISITION_IDEMPOTENCY_TTL"

	EnvReconcileInterval = "STOCKROOM_RECONCILE_INTERVAL"
	EnvReconcileLockTTL  = "STOCKROOM_RECONCILE_LOCK_TTL"
)

// legacyDBEnvVars must all be present when no DSN is configured.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
