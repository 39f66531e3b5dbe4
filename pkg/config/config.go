package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	OTP          OTPConfig
	Fees         FeesConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FARMDIRECT_APP_ENV" default:"dev"`
	Port         string `envconfig:"FARMDIRECT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FARMDIRECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMDIRECT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the storage engine once at boot. Driver is either
// "postgres" (networked, pooled, real transactions) or "sqlite" (embedded,
// single ambient connection, no transaction isolation).
type DBConfig struct {
	Driver     string `envconfig:"FARMDIRECT_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"FARMDIRECT_DB_DSN"`
	SQLitePath string `envconfig:"FARMDIRECT_DB_SQLITE_PATH" default:"farmdirect.sqlite"`

	Host     string `envconfig:"FARMDIRECT_DB_HOST"`
	Port     int    `envconfig:"FARMDIRECT_DB_PORT" default:"5432"`
	User     string `envconfig:"FARMDIRECT_DB_USER"`
	Password string `envconfig:"FARMDIRECT_DB_PASSWORD"`
	Name     string `envconfig:"FARMDIRECT_DB_NAME"`
	SSLMode  string `envconfig:"FARMDIRECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMDIRECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMDIRECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMDIRECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMDIRECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UseSQLite reports whether the embedded engine was selected.
func (db DBConfig) UseSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMDIRECT_REDIS_URL"`
	PoolSize     int           `envconfig:"FARMDIRECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMDIRECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMDIRECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMDIRECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMDIRECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Redis only backs
// the OTP issuance rate limit, so single-instance deployments may omit it.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"FARMDIRECT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FARMDIRECT_JWT_ISSUER" default:"farmdirect"`
	ExpirationMinutes int    `envconfig:"FARMDIRECT_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type OTPConfig struct {
	TTL         time.Duration `envconfig:"FARMDIRECT_OTP_TTL" default:"5m"`
	IssueLimit  int           `envconfig:"FARMDIRECT_OTP_ISSUE_LIMIT" default:"5"`
	IssueWindow time.Duration `envconfig:"FARMDIRECT_OTP_ISSUE_WINDOW" default:"15m"`
}

// FeesConfig feeds the default commission/fee split. Rates are percentages
// expressed as decimal strings so operators can override without a deploy.
type FeesConfig struct {
	CommissionRate string `envconfig:"FARMDIRECT_FEES_COMMISSION_RATE" default:"0"`
	DeliveryFee    string `envconfig:"FARMDIRECT_FEES_DELIVERY_FEE" default:"0"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FARMDIRECT_AUTO_MIGRATE" default:"true"`
	ExposeOTP   bool `envconfig:"FARMDIRECT_EXPOSE_OTP" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.UseSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if required[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
