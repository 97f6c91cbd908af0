package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address      string   `yaml:"address"`
	SwaggerDir   string   `yaml:"swagger_dir"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver  string `yaml:"driver"`
	Migrate bool   `yaml:"migrate"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type EventsConfig struct {
	// Driver is "kafka", "rabbitmq" or "none".
	Driver string `yaml:"driver"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	ReservationsTopic string   `yaml:"reservations_topic"`
	GroupID           string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type WorkerConfig struct {
	StatsIntervalSec int `yaml:"stats_interval_seconds"`
}

func (w WorkerConfig) StatsInterval() time.Duration {
	return time.Duration(w.StatsIntervalSec) * time.Second
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLMin int    `yaml:"token_ttl_minutes"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
	// RequireToken rejects booking calls without a bearer token. When unset,
	// an X-Customer-ID header is accepted instead.
	RequireToken bool `yaml:"require_token"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMin) * time.Minute
}

type BookingConfig struct {
	TrainsCacheTTL int `yaml:"trains_cache_ttl_seconds"`
	TrainLockTTL   int `yaml:"train_lock_ttl_seconds"`
	CodeAttempts   int `yaml:"confirmation_code_attempts"`
	MaxPassengers  int `yaml:"max_passengers"`
	LockWaitMillis int `yaml:"lock_wait_millis"`
	// PublishRetries bounds the attempts per event on publishers that retry.
	PublishRetries int `yaml:"publish_retries"`
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.TrainsCacheTTL) * time.Second
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.TrainLockTTL) * time.Second
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitMillis) * time.Millisecond
}

// LoadConfig reads the YAML file at path, then lets environment variables
// (optionally from a .env file next to the binary) override addresses and secrets.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployments are allowed
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Address = envStr("HTTP_ADDRESS", cfg.HTTP.Address)
	cfg.GRPC.Address = envStr("GRPC_ADDRESS", cfg.GRPC.Address)
	cfg.Log.Level = envStr("LOG_LEVEL", cfg.Log.Level)
	cfg.Storage.Driver = envStr("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Database.Host = envStr("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = envStr("DB_USER", cfg.Database.User)
	cfg.Database.Password = envStr("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = envStr("DB_NAME", cfg.Database.Name)
	cfg.Redis.Addr = envStr("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envStr("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Events.Driver = envStr("EVENTS_DRIVER", cfg.Events.Driver)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	cfg.RabbitMQ.URL = envStr("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.Auth.JWTSecret = envStr("JWT_SECRET", cfg.Auth.JWTSecret)
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.GRPC.Address == "" {
		cfg.GRPC.Address = ":9090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "postgres"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Events.Driver == "" {
		cfg.Events.Driver = "none"
	}
	if cfg.Kafka.ReservationsTopic == "" {
		cfg.Kafka.ReservationsTopic = "reservations"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "reservation-worker"
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = "reservations.events"
	}
	if cfg.Auth.TokenTTLMin == 0 {
		cfg.Auth.TokenTTLMin = 60
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 10
	}
	if cfg.Booking.TrainsCacheTTL == 0 {
		cfg.Booking.TrainsCacheTTL = 30
	}
	if cfg.Booking.TrainLockTTL == 0 {
		cfg.Booking.TrainLockTTL = 5
	}
	if cfg.Booking.CodeAttempts == 0 {
		cfg.Booking.CodeAttempts = 5
	}
	if cfg.Booking.MaxPassengers == 0 {
		cfg.Booking.MaxPassengers = 6
	}
	if cfg.Booking.LockWaitMillis == 0 {
		cfg.Booking.LockWaitMillis = 2000
	}
	if cfg.Booking.PublishRetries == 0 {
		cfg.Booking.PublishRetries = 3
	}
	if cfg.Worker.StatsIntervalSec == 0 {
		cfg.Worker.StatsIntervalSec = 60
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Events.Driver {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka events require at least one broker")
		}
	case "rabbitmq":
		if c.RabbitMQ.URL == "" {
			return errors.New("rabbitmq events require a url")
		}
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if c.Auth.RequireToken && c.Auth.JWTSecret == "" {
		return errors.New("jwt_secret is required when require_token is set")
	}
	if c.Booking.MaxPassengers < 1 {
		return errors.New("max_passengers must be positive")
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
