package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "FARMDIRECT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "FARMDIRECT_APP_ENV"
	EnvPort       = "FARMDIRECT_APP_PORT"
	EnvDBDriver   = "FARMDIRECT_DB_DRIVER"
	EnvDBDSN      = "FARMDIRECT_DB_DSN"
	EnvDBHost     = "FARMDIRECT_DB_HOST"
	EnvDBUser     = "FARMDIRECT_DB_USER"
	EnvDBName     = "FARMDIRECT_DB_NAME"
	EnvRedisURL   = "FARMDIRECT_REDIS_URL"
	EnvJWTSecret  = "FARMDIRECT_JWT_SECRET"
	EnvJWTIssuer  = "FARMDIRECT_JWT_ISSUER"
	EnvJWTExpMins = "FARMDIRECT_JWT_EXPIRATION_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
