package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Subx"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"subx"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
		AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Purchase struct {
		ReservationTTL  time.Duration   `envconfig:"RESERVATION_TTL" default:"30m"`
		SweepInterval   time.Duration   `envconfig:"RESERVATION_SWEEP_INTERVAL" default:"1m"`
		AmountTolerance decimal.Decimal `envconfig:"PAYMENT_AMOUNT_TOLERANCE" default:"0.01"`
		ReferenceNode   int64           `envconfig:"PAYMENT_REFERENCE_NODE" default:"1"`
	}

	Payment struct {
		Sandbox     bool          `envconfig:"PAYMENT_SANDBOX" default:"false"`
		SecretKey   string        `envconfig:"PAYSTACK_SECRET_KEY"`
		BaseURL     string        `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
		CallbackURL string        `envconfig:"PAYMENT_CALLBACK_URL" default:"http://localhost:3000/payment/callback"`
		Currency    string        `envconfig:"PAYMENT_CURRENCY" default:"NGN"`
		Timeout     time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"15s"`
	}

	Referral struct {
		Rate decimal.Decimal `envconfig:"REFERRAL_COMMISSION_RATE" default:"0.05"`
	}

	Reconcile struct {
		Enabled  bool          `envconfig:"RECONCILE_ENABLED" default:"true"`
		Interval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"24h"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	RateLimit struct {
		Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
		Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"20"`
		RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
		RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"3s"`
		TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
		Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"subx:rl"`
	}

	Events struct {
		QueueSize      int           `envconfig:"EVENT_QUEUE_SIZE" default:"1024"`
		HandlerTimeout time.Duration `envconfig:"EVENT_HANDLER_TIMEOUT" default:"10s"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"subx.purchases"`
		Queue    string `envconfig:"AMQP_REFERRAL_QUEUE" default:"subx.referral-credit"`
	}
}

// ConnectionString returns DATABASE_URL when set, otherwise a DSN built from the DB_* variables.
func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Purchase.ReservationTTL <= 0 {
		return fmt.Errorf("RESERVATION_TTL must be positive")
	}

	if c.Purchase.SweepInterval <= 0 {
		return fmt.Errorf("RESERVATION_SWEEP_INTERVAL must be positive")
	}

	if c.Purchase.AmountTolerance.IsNegative() {
		return fmt.Errorf("PAYMENT_AMOUNT_TOLERANCE must not be negative")
	}

	if c.Referral.Rate.IsNegative() || c.Referral.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("REFERRAL_COMMISSION_RATE must be between 0 and 1")
	}

	if c.Reconcile.Enabled && c.Reconcile.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}

	if !c.Payment.Sandbox && c.Payment.SecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY is required unless PAYMENT_SANDBOX=true")
	}

	if c.Events.QueueSize <= 0 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be positive")
	}

	if c.Events.HandlerTimeout <= 0 {
		return fmt.Errorf("EVENT_HANDLER_TIMEOUT must be positive")
	}

	if c.Purchase.ReferenceNode < 0 || c.Purchase.ReferenceNode > 1023 {
		return fmt.Errorf("PAYMENT_REFERENCE_NODE must be between 0 and 1023")
	}

	return nil
}
