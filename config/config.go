package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"invoicehub/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       logger.Config   `mapstructure:"log"`
	Mail      MailConfig      `mapstructure:"mail"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port             int    `mapstructure:"port"`
	Host             string `mapstructure:"host"`
	Mode             string `mapstructure:"mode"`     // gin mode: debug, release, test
	BaseURL          string `mapstructure:"base_url"` // public URL used in email links
	ValidateRequests bool   `mapstructure:"validate_requests"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN builds a postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig configures the token revocation store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MailConfig configures outgoing email. With no APIToken, mail is only logged.
type MailConfig struct {
	APIURL             string        `mapstructure:"api_url"`
	APIToken           string        `mapstructure:"api_token"`
	FromEmail          string        `mapstructure:"from_email"`
	FromName           string        `mapstructure:"from_name"`
	CreatedTemplateID  string        `mapstructure:"created_template_id"`
	UpdatedTemplateID  string        `mapstructure:"updated_template_id"`
	ReminderTemplateID string        `mapstructure:"reminder_template_id"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// AMQPConfig configures the event broker. An empty URI dispatches events in-process.
type AMQPConfig struct {
	URI      string `mapstructure:"uri"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type OutboxConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	BatchSize   int           `mapstructure:"batch_size"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// RateLimitConfig bounds reminder sends per user.
type RateLimitConfig struct {
	ReminderPerMinute float64 `mapstructure:"reminder_per_minute"`
	ReminderBurst     int     `mapstructure:"reminder_burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.validate_requests", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "invoicehub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "invoicehub")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.output", "stdout")

	v.SetDefault("mail.api_url", "https://send.api.mailtrap.io/api/send")
	v.SetDefault("mail.api_token", "")
	v.SetDefault("mail.from_email", "hello@demomailtrap.com")
	v.SetDefault("mail.from_name", "InvoiceHub")
	v.SetDefault("mail.created_template_id", "")
	v.SetDefault("mail.updated_template_id", "")
	v.SetDefault("mail.reminder_template_id", "")
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("amqp.uri", "")
	v.SetDefault("amqp.exchange", "invoicehub.events")
	v.SetDefault("amqp.queue", "invoicehub.notifications")

	v.SetDefault("outbox.interval", 5*time.Second)
	v.SetDefault("outbox.batch_size", 20)
	v.SetDefault("outbox.max_attempts", 5)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")

	v.SetDefault("ratelimit.reminder_per_minute", 2.0)
	v.SetDefault("ratelimit.reminder_burst", 3)
}

// Load reads configuration from .env, an optional config.yaml, INVOICEHUB_* environment
// variables and finally the plain DB_*, SERVER_*, JWT_SECRET and CORS_ALLOWED_ORIGINS
// variables, in increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/app")
	if path := os.Getenv("INVOICEHUB_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using defaults and environment variables")
	}

	v.SetEnvPrefix("INVOICEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("port", cfg.Server.Port).
		Str("db_host", cfg.DB.Host).
		Strs("allowed_origins", cfg.CORS.AllowedOrigins).
		Msg("Configuration loaded")

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.DB.Port = port
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.DB.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	// comma-separated
	if originsStr := os.Getenv("CORS_ALLOWED_ORIGINS"); originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set (JWT_SECRET or INVOICEHUB_JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Outbox.MaxAttempts < 1 {
		return errors.New("outbox.max_attempts must be at least 1")
	}
	return nil
}
