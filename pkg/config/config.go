package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Analytics AnalyticsConfig
	Features  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BASECAMP_APP_ENV" required:"true"`
	Port         string `envconfig:"BASECAMP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BASECAMP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BASECAMP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BASECAMP_DB_DSN"`
	Driver string `envconfig:"BASECAMP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BASECAMP_DB_HOST"`
	LegacyPort     int    `envconfig:"BASECAMP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BASECAMP_DB_USER"`
	LegacyPassword string `envconfig:"BASECAMP_DB_PASSWORD"`
	LegacyName     string `envconfig:"BASECAMP_DB_NAME"`
	LegacySSLMode  string `envconfig:"BASECAMP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BASECAMP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BASECAMP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BASECAMP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BASECAMP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BASECAMP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BASECAMP_REDIS_ADDR"`
	Password     string        `envconfig:"BASECAMP_REDIS_PASSWORD"`
	DB           int           `envconfig:"BASECAMP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BASECAMP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BASECAMP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BASECAMP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BASECAMP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BASECAMP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BASECAMP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BASECAMP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BASECAMP_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"BASECAMP_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BASECAMP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BASECAMP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BASECAMP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BASECAMP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BASECAMP_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BASECAMP_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"BASECAMP_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"BASECAMP_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	APIWindow       time.Duration `envconfig:"BASECAMP_RATE_LIMIT_API_WINDOW" default:"1m"`
	APILimit        int           `envconfig:"BASECAMP_RATE_LIMIT_API_LIMIT" default:"240"`
}

type AnalyticsConfig struct {
	ReconcileInterval time.Duration `envconfig:"BASECAMP_ANALYTICS_RECONCILE_INTERVAL" default:"24h"`
	LockTTL           time.Duration `envconfig:"BASECAMP_ANALYTICS_LOCK_TTL" default:"25h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BASECAMP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
