package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig prefix shared by every setting.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Geo           GeoConfig
	Stripe        StripeConfig
	FeatureFlags  FeatureFlagsConfig
}

// Load parses the full configuration from the environment. Mandatory
// settings (DSN, Redis, JWT secret) abort startup when missing; there is no
// degraded mode without the backing services.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SERVANA_APP_ENV" required:"true"`
	Port         string `envconfig:"SERVANA_APP_PORT" required:"true"`
	URL          string `envconfig:"SERVANA_APP_URL" default:"http://localhost:5173"`
	LogLevel     string `envconfig:"SERVANA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERVANA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERVANA_DB_DSN" required:"true"`
	Driver string `envconfig:"SERVANA_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"SERVANA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERVANA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERVANA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERVANA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SERVANA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SERVANA_REDIS_ADDR"`
	Password     string        `envconfig:"SERVANA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SERVANA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SERVANA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERVANA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERVANA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERVANA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVANA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SERVANA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SERVANA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SERVANA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SERVANA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SERVANA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SERVANA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SERVANA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SERVANA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SERVANA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SERVANA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SERVANA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SERVANA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SERVANA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SERVANA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SERVANA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// GeoConfig carries the device watch options handed to the geolocation
// capability: continuous high-accuracy watch, bounded cache age, bounded
// wait for the first fix.
type GeoConfig struct {
	EnableHighAccuracy bool          `envconfig:"SERVANA_GEO_HIGH_ACCURACY" default:"true"`
	MaximumAge         time.Duration `envconfig:"SERVANA_GEO_MAXIMUM_AGE" default:"5s"`
	Timeout            time.Duration `envconfig:"SERVANA_GEO_TIMEOUT" default:"10s"`
}

type StripeConfig struct {
	SecretKey       string `envconfig:"SERVANA_STRIPE_SECRET_KEY"`
	Env             string `envconfig:"SERVANA_STRIPE_ENV" default:"test"`
	DefaultCurrency string `envconfig:"SERVANA_STRIPE_DEFAULT_CURRENCY" default:"inr"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SERVANA_AUTO_MIGRATE" default:"false"`
}
