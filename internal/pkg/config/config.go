package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, rates), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Pricing PricingConfig
	Order   OrderConfig
	Clients ClientsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL  time.Duration `envconfig:"CART_TTL" default:"720h"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

// Tokens are issued by the external auth service; this service only verifies them.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
	Issuer string `envconfig:"JWT_ISSUER" default:""`
}

type PricingConfig struct {
	TaxRate             decimal.Decimal `envconfig:"TAX_RATE" default:"0.18"`
	SecurityDepositRate decimal.Decimal `envconfig:"SECURITY_DEPOSIT_RATE" default:"0.10"`
	Currency            string          `envconfig:"CURRENCY" default:"INR"`
}

type OrderConfig struct {
	AutoConfirmOnFullPayment bool `envconfig:"AUTO_CONFIRM_ON_FULL_PAYMENT" default:"true"`
	InvoiceDueDays           int  `envconfig:"INVOICE_DUE_DAYS" default:"7"`
}

type ClientsConfig struct {
	CouponOracleURL       string        `envconfig:"COUPON_ORACLE_URL" required:"true"`
	PaymentGatewayURL     string        `envconfig:"PAYMENT_GATEWAY_URL" required:"true"`
	PaymentGatewayKey     string        `envconfig:"PAYMENT_GATEWAY_KEY" required:"true"`
	PaymentCallbackSecret string        `envconfig:"PAYMENT_CALLBACK_SECRET" required:"true"`
	Timeout               time.Duration `envconfig:"CLIENT_TIMEOUT" default:"5s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Pricing.TaxRate.IsNegative() || cfg.Pricing.SecurityDepositRate.IsNegative() {
		return Config{}, fmt.Errorf("TAX_RATE and SECURITY_DEPOSIT_RATE must not be negative")
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,
			MinConns: 1,
		},
		Redis: RedisConfig{
			Addr:    "localhost:16379",
			CartTTL: time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Pricing: PricingConfig{
			TaxRate:             decimal.RequireFromString("0.18"),
			SecurityDepositRate: decimal.RequireFromString("0.10"),
			Currency:            "INR",
		},
		Order: OrderConfig{
			AutoConfirmOnFullPayment: true,
			InvoiceDueDays:           7,
		},
		Clients: ClientsConfig{
			CouponOracleURL:       "http://localhost:18081",
			PaymentGatewayURL:     "http://localhost:18082",
			PaymentGatewayKey:     "test-key",
			PaymentCallbackSecret: "test-callback-secret",
			Timeout:               time.Second,
		},
	}
}
