package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "KEKSOKO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Session  SessionConfig
	Upstream UpstreamConfig
	Checkout CheckoutConfig
	Cart     CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.ensurePhonePattern(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"KEKSOKO_APP_ENV" required:"true"`
	Port         string   `envconfig:"KEKSOKO_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"KEKSOKO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"KEKSOKO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"KEKSOKO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"KEKSOKO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KEKSOKO_REDIS_ADDR"`
	Password     string        `envconfig:"KEKSOKO_REDIS_PASSWORD"`
	DB           int           `envconfig:"KEKSOKO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KEKSOKO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KEKSOKO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KEKSOKO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KEKSOKO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KEKSOKO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the signed cookie that identifies anonymous buyers.
type SessionConfig struct {
	Secret     string `envconfig:"KEKSOKO_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"KEKSOKO_SESSION_ISSUER" default:"keksoko-storefront"`
	TTLHours   int    `envconfig:"KEKSOKO_SESSION_TTL_HOURS" default:"720"`
	CookieName string `envconfig:"KEKSOKO_SESSION_COOKIE" default:"keksoko_session"`
	Secure     bool   `envconfig:"KEKSOKO_SESSION_SECURE" default:"true"`
}

// TTL returns the session lifetime configured in hours.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// UpstreamConfig points at the marketplace API that owns products, orders and payments.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"KEKSOKO_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"KEKSOKO_UPSTREAM_TIMEOUT" default:"10s"`
}

// CheckoutConfig tunes the payment polling loop and contact validation.
type CheckoutConfig struct {
	PollInterval time.Duration `envconfig:"KEKSOKO_CHECKOUT_POLL_INTERVAL" default:"3s"`
	PollTimeout  time.Duration `envconfig:"KEKSOKO_CHECKOUT_POLL_TIMEOUT" default:"5m"`

	// PhonePattern is the mobile-money number shape for the target market.
	// The default matches Kenyan mobile numbers (07xx/01xx, ten digits).
	PhonePattern string `envconfig:"KEKSOKO_CHECKOUT_PHONE_PATTERN" default:"^0[17][0-9]{8}$"`

	phoneRegexp *regexp.Regexp
}

// PhoneRegexp returns the compiled phone validation pattern.
func (c *CheckoutConfig) PhoneRegexp() *regexp.Regexp {
	if c.phoneRegexp == nil {
		c.phoneRegexp = regexp.MustCompile(c.PhonePattern)
	}
	return c.phoneRegexp
}

func (c *CheckoutConfig) ensurePhonePattern() error {
	if strings.TrimSpace(c.PhonePattern) == "" {
		return fmt.Errorf("checkout phone pattern is required")
	}
	compiled, err := regexp.Compile(c.PhonePattern)
	if err != nil {
		return fmt.Errorf("invalid checkout phone pattern %q: %w", c.PhonePattern, err)
	}
	c.phoneRegexp = compiled
	if c.PollInterval <= 0 {
		return fmt.Errorf("checkout poll interval must be positive")
	}
	if c.PollTimeout <= c.PollInterval {
		return fmt.Errorf("checkout poll timeout (%s) must exceed poll interval (%s)", c.PollTimeout, c.PollInterval)
	}
	return nil
}

// CartConfig tunes cart persistence.
type CartConfig struct {
	StorageTTL time.Duration `envconfig:"KEKSOKO_CART_STORAGE_TTL" default:"720h"`
}
