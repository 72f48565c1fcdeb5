package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServerPort              string        `env:"SERVER_PORT, default=8080"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT, default=10s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT, default=30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT, default=120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT, default=30s"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS, default=10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS, default=2"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL, default=30m"`
	JWTIssuer    string        `env:"JWT_ISSUER, default=sweetshop"`

	CORSOrigins      []string `env:"CORS_ORIGINS, default=*"`
	RateLimitRPM     int      `env:"RATE_LIMIT_RPM, default=100"`
	AuthRateLimitRPM int      `env:"AUTH_RATE_LIMIT_RPM, default=10"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=pretty"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisDB         int           `env:"REDIS_DB, default=0"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL, default=1m"`

	AMQPURL   string `env:"AMQP_URL"`
	AMQPQueue string `env:"AMQP_QUEUE, default=sweetshop.inventory"`

	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	LowStockThreshold int    `env:"LOW_STOCK_THRESHOLD, default=5"`
}

// Load reads an optional .env file and then decodes the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS out of range: %d/%d", c.DBMinConns, c.DBMaxConns)
	}

	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD cannot be negative")
	}

	return nil
}

func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

func (c *Config) RelayEnabled() bool {
	return strings.TrimSpace(c.AMQPURL) != ""
}
