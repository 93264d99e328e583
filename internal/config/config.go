package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV" validate:"required,oneof=development test staging production"`
	Port     string `mapstructure:"PORT" validate:"required,numeric"`
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Leave    LeaveConfig
	Worker   WorkerConfig
}

type DatabaseConfig struct {
	Host          string `mapstructure:"DB_HOST" validate:"required"`
	User          string `mapstructure:"DB_USER" validate:"required"`
	Password      string `mapstructure:"DB_PASSWORD"`
	Name          string `mapstructure:"DB_NAME" validate:"required"`
	Port          string `mapstructure:"DB_PORT" validate:"required,numeric"`
	SSLMode       string `mapstructure:"DB_SSLMODE" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxRetries    int    `mapstructure:"DB_MAX_RETRIES" validate:"min=1"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

// DSN is the key=value form understood by both gorm's postgres driver and pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr       string `mapstructure:"REDIS_ADDR" validate:"required"`
	MaxRetries int    `mapstructure:"REDIS_MAX_RETRIES" validate:"min=1"`
}

type KafkaConfig struct {
	Broker        string `mapstructure:"KAFKA_BROKER"`
	ConsumerGroup string `mapstructure:"KAFKA_CONSUMER_GROUP"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	JWTExpiry time.Duration `mapstructure:"JWT_EXPIRY" validate:"required,min=1m"`
}

type LeaveConfig struct {
	DefaultBalance  int           `mapstructure:"DEFAULT_LEAVE_BALANCE" validate:"min=0"`
	AccrualDays     int           `mapstructure:"ACCRUAL_DAYS" validate:"min=1"`
	HolidayCacheTTL time.Duration `mapstructure:"HOLIDAY_CACHE_TTL" validate:"min=1s"`
}

type WorkerConfig struct {
	OutboxPollInterval   time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL" validate:"min=100ms"`
	AccrualCheckInterval time.Duration `mapstructure:"ACCRUAL_CHECK_INTERVAL" validate:"min=1s"`
	HolidaySweepInterval time.Duration `mapstructure:"HOLIDAY_SWEEP_INTERVAL" validate:"min=1s"`
}

var defaults = map[string]any{
	"APP_ENV":                "development",
	"PORT":                   "3000",
	"DB_HOST":                "localhost",
	"DB_USER":                "postgres",
	"DB_PASSWORD":            "",
	"DB_NAME":                "go_leave",
	"DB_PORT":                "5432",
	"DB_SSLMODE":             "disable",
	"DB_MAX_RETRIES":         5,
	"MIGRATIONS_DIR":         "migrations",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_MAX_RETRIES":      5,
	"KAFKA_BROKER":           "",
	"KAFKA_CONSUMER_GROUP":   "go-leave-holiday-cascade",
	"JWT_SECRET":             "",
	"JWT_EXPIRY":             "24h",
	"DEFAULT_LEAVE_BALANCE":  2,
	"ACCRUAL_DAYS":           2,
	"HOLIDAY_CACHE_TTL":      "1h",
	"OUTBOX_POLL_INTERVAL":   "3s",
	"ACCRUAL_CHECK_INTERVAL": "1h",
	"HOLIDAY_SWEEP_INTERVAL": "15m",
}

// Load reads .env (when present), then the process environment, on top of
// the defaults above.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

// LoadDatabase is used by cmd/migrate, which only needs the database keys.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()
	v := viper.New()
	applyDefaults(v)

	db := databaseConfig(v)
	if err := validateStruct(db); err != nil {
		return DatabaseConfig{}, err
	}
	return db, nil
}

func applyDefaults(v *viper.Viper) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()
}

func databaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		Port:          v.GetString("DB_PORT"),
		SSLMode:       v.GetString("DB_SSLMODE"),
		MaxRetries:    v.GetInt("DB_MAX_RETRIES"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
	}
}

func load(v *viper.Viper) (*Config, error) {
	applyDefaults(v)

	cfg := &Config{
		AppEnv:   v.GetString("APP_ENV"),
		Port:     v.GetString("PORT"),
		Database: databaseConfig(v),
		Redis: RedisConfig{
			Addr:       v.GetString("REDIS_ADDR"),
			MaxRetries: v.GetInt("REDIS_MAX_RETRIES"),
		},
		Kafka: KafkaConfig{
			Broker:        v.GetString("KAFKA_BROKER"),
			ConsumerGroup: v.GetString("KAFKA_CONSUMER_GROUP"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			JWTExpiry: v.GetDuration("JWT_EXPIRY"),
		},
		Leave: LeaveConfig{
			DefaultBalance:  v.GetInt("DEFAULT_LEAVE_BALANCE"),
			AccrualDays:     v.GetInt("ACCRUAL_DAYS"),
			HolidayCacheTTL: v.GetDuration("HOLIDAY_CACHE_TTL"),
		},
		Worker: WorkerConfig{
			OutboxPollInterval:   v.GetDuration("OUTBOX_POLL_INTERVAL"),
			AccrualCheckInterval: v.GetDuration("ACCRUAL_CHECK_INTERVAL"),
			HolidaySweepInterval: v.GetDuration("HOLIDAY_SWEEP_INTERVAL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validateStruct(c)
}

func validateStruct(s any) error {
	if err := validator.New().Struct(s); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireKafka is checked by the processes that cannot run without a broker.
func (c *Config) RequireKafka() error {
	if strings.TrimSpace(c.Kafka.Broker) == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
