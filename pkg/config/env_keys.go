package config

// EnvPrefix is passed to envconfig; individual fields carry explicit tags so
// the prefix only matters for fields without one.
const EnvPrefix = "basecamp"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "BASECAMP_APP_ENV"
	EnvPort       = "BASECAMP_APP_PORT"
	EnvDBDSN      = "BASECAMP_DB_DSN"
	EnvDBHost     = "BASECAMP_DB_HOST"
	EnvDBUser     = "BASECAMP_DB_USER"
	EnvDBName     = "BASECAMP_DB_NAME"
	EnvRedisURL   = "BASECAMP_REDIS_URL"
	EnvJWTSecret  = "BASECAMP_JWT_SECRET"
	EnvJWTIssuer  = "BASECAMP_JWT_ISSUER"
	EnvJWTExpMins = "BASECAMP_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
