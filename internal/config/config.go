package config

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Billing   BillingConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver   string // postgres or mysql
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	Addr     string // empty disables redis
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
}

type BillingConfig struct {
	DefaultRate   decimal.Decimal
	DueDays       int
	IssueAttempts int
	MinBackoff    time.Duration
	MaxBackoff    time.Duration
	AutoBill      bool
	AutoBillRate  decimal.Decimal // zero means no override on auto-issued bills
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
	LockTTL  time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "brokerbill-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "brokerbill")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("BILLING_DEFAULT_RATE", "30")
	viper.SetDefault("BILLING_DUE_DAYS", 30)
	viper.SetDefault("BILLING_ISSUE_ATTEMPTS", 3)
	viper.SetDefault("BILLING_RETRY_MIN_MS", 10)
	viper.SetDefault("BILLING_RETRY_MAX_MS", 50)
	viper.SetDefault("BILLING_AUTO_BILL", false)
	viper.SetDefault("BILLING_AUTO_BILL_RATE", "0")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_INTERVAL", "24h")
	viper.SetDefault("SCHEDULER_LOCK_TTL", "10m")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Billing: BillingConfig{
			DefaultRate:   decimalOr(viper.GetString("BILLING_DEFAULT_RATE"), decimal.NewFromInt(30)),
			DueDays:       viper.GetInt("BILLING_DUE_DAYS"),
			IssueAttempts: viper.GetInt("BILLING_ISSUE_ATTEMPTS"),
			MinBackoff:    time.Duration(viper.GetInt("BILLING_RETRY_MIN_MS")) * time.Millisecond,
			MaxBackoff:    time.Duration(viper.GetInt("BILLING_RETRY_MAX_MS")) * time.Millisecond,
			AutoBill:      viper.GetBool("BILLING_AUTO_BILL"),
			AutoBillRate:  decimalOr(viper.GetString("BILLING_AUTO_BILL_RATE"), decimal.Zero),
		},
		Scheduler: SchedulerConfig{
			Enabled:  viper.GetBool("SCHEDULER_ENABLED"),
			Interval: viper.GetDuration("SCHEDULER_INTERVAL"),
			LockTTL:  viper.GetDuration("SCHEDULER_LOCK_TTL"),
		},
	}
}

func decimalOr(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Printf("Warning: invalid decimal %q in config, using %s", s, fallback)
		return fallback
	}
	return d
}

// DSN renders the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
