package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Holds    HoldsConfig    `toml:"holds"`
	Payments PaymentsConfig `toml:"payments"`
	Worker   WorkerConfig   `toml:"worker"`
}

type ServerConfig struct {
	HTTPPort          int `toml:"http_port"`
	ReadTimeout       int `toml:"read_timeout"`
	WriteTimeout      int `toml:"write_timeout"`
	IdleTimeout       int `toml:"idle_timeout"`
	ShutdownTimeout   int `toml:"shutdown_timeout"`
	HoldRatePerMinute int `toml:"hold_rate_per_minute"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type TracingConfig struct {
	Endpoint string `toml:"endpoint"`
}

type RedisConfig struct {
	Addr                  string `toml:"addr"`
	Password              string `toml:"password"`
	DB                    int    `toml:"db"`
	AvailabilityTTL       int    `toml:"availability_ttl"` // секунды
	AvailabilityPrefix    string `toml:"availability_prefix"`
	IdempotencyTTL        int    `toml:"idempotency_ttl"` // секунды
	InvalidationTimeoutMs int    `toml:"invalidation_timeout_ms"`
}

type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

type HoldsConfig struct {
	TTLMinutes int    `toml:"ttl_minutes"`
	TravelFee  string `toml:"travel_fee"` // фиксированная плата за выезд, decimal строкой
	Currency   string `toml:"currency"`
}

// TTL время жизни холда
func (h HoldsConfig) TTL() time.Duration {
	return time.Duration(h.TTLMinutes) * time.Minute
}

// TravelFeeAmount плата за выезд
func (h HoldsConfig) TravelFeeAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(h.TravelFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

type PaymentsConfig struct {
	GatewayURL string `toml:"gateway_url"`
	SecretKey  string `toml:"secret_key"`
	Timeout    int    `toml:"timeout"` // секунды
}

type WorkerConfig struct {
	HoldSweepInterval  int `toml:"hold_sweep_interval"`  // секунды
	OutboxPollInterval int `toml:"outbox_poll_interval"` // секунды
	OutboxBatchSize    int `toml:"outbox_batch_size"`
	MetricsPort        int `toml:"metrics_port"`
}

// Load читает .env (если есть), затем TOML файл и применяет переопределения из окружения
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString("DATABASE_HOST", &cfg.Database.Host)
	overrideInt("DATABASE_PORT", &cfg.Database.Port)
	overrideString("DATABASE_USER", &cfg.Database.User)
	overrideString("DATABASE_PASSWORD", &cfg.Database.Password)
	overrideString("DATABASE_NAME", &cfg.Database.DBName)
	overrideString("REDIS_ADDR", &cfg.Redis.Addr)
	overrideString("REDIS_PASSWORD", &cfg.Redis.Password)
	overrideString("RABBITMQ_URL", &cfg.RabbitMQ.URL)
	overrideString("PAYMENTS_SECRET_KEY", &cfg.Payments.SecretKey)
	overrideString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	overrideInt("HOLD_TTL_MINUTES", &cfg.Holds.TTLMinutes)
}

func setDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Server.HoldRatePerMinute == 0 {
		cfg.Server.HoldRatePerMinute = 30
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "salon_booking_service"
	}
	if cfg.Redis.AvailabilityTTL == 0 {
		cfg.Redis.AvailabilityTTL = 120
	}
	if cfg.Redis.AvailabilityPrefix == "" {
		cfg.Redis.AvailabilityPrefix = "availability"
	}
	if cfg.Redis.IdempotencyTTL == 0 {
		cfg.Redis.IdempotencyTTL = 24 * 60 * 60
	}
	if cfg.Redis.InvalidationTimeoutMs == 0 {
		cfg.Redis.InvalidationTimeoutMs = 500
	}
	if cfg.RabbitMQ.Exchange == "" {
		cfg.RabbitMQ.Exchange = "salon.events"
	}
	if cfg.Holds.TTLMinutes == 0 {
		cfg.Holds.TTLMinutes = 10
	}
	if cfg.Holds.TravelFee == "" {
		cfg.Holds.TravelFee = "0"
	}
	if cfg.Holds.Currency == "" {
		cfg.Holds.Currency = "ZAR"
	}
	if cfg.Payments.Timeout == 0 {
		cfg.Payments.Timeout = 5
	}
	if cfg.Worker.HoldSweepInterval == 0 {
		cfg.Worker.HoldSweepInterval = 60
	}
	if cfg.Worker.OutboxPollInterval == 0 {
		cfg.Worker.OutboxPollInterval = 5
	}
	if cfg.Worker.OutboxBatchSize == 0 {
		cfg.Worker.OutboxBatchSize = 50
	}
	if cfg.Worker.MetricsPort == 0 {
		cfg.Worker.MetricsPort = 9091
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database host and dbname are required", ErrInvalidConfig)
	}
	if c.Holds.TTLMinutes < 0 {
		return fmt.Errorf("%w: holds.ttl_minutes must be positive", ErrInvalidConfig)
	}
	if _, err := decimal.NewFromString(c.Holds.TravelFee); err != nil {
		return fmt.Errorf("%w: holds.travel_fee is not a decimal: %v", ErrInvalidConfig, err)
	}
	return nil
}

func overrideString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overrideInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
