// Package config carrega a configuração do serviço a partir de valores padrão,
// de um arquivo .env opcional e das variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Events   EventsConfig   `koanf:"events"`
	Mail     MailConfig     `koanf:"mail"`
}

type AppConfig struct {
	Name     string `koanf:"name"`
	LogLevel string `koanf:"log_level"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	AuthRateLimit   int           `koanf:"auth_rate_limit"`
}

type DatabaseConfig struct {
	URL         string `koanf:"url"`
	SSL         bool   `koanf:"ssl"`
	AutoMigrate bool   `koanf:"auto_migrate"`
	Debug       bool   `koanf:"debug"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
	// AdminEmails recebem user_type "admin" ao se cadastrar.
	AdminEmails []string `koanf:"admin_emails"`
}

type ScheduleConfig struct {
	Timezone                 string        `koanf:"timezone"`
	BlacklistCleanupInterval time.Duration `koanf:"blacklist_cleanup_interval"`
	DailyTripsInterval       time.Duration `koanf:"daily_trips_interval"`
	DailyTripsDaysAhead      int           `koanf:"daily_trips_days_ahead"`
	MaxBackoff               time.Duration `koanf:"max_backoff"`
}

type EventsConfig struct {
	Transport     string   `koanf:"transport"`
	RedisAddr     string   `koanf:"redis_addr"`
	RedisPassword string   `koanf:"redis_password"`
	RedisDB       int      `koanf:"redis_db"`
	KafkaBrokers  []string `koanf:"kafka_brokers"`
	ConsumerGroup string   `koanf:"consumer_group"`
}

type MailConfig struct {
	From string `koanf:"from"`
}

// Location devolve o fuso usado para delimitar os dias das viagens.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "van-bff",
			LogLevel: "info",
		},
		Server: ServerConfig{
			Port:            8080,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
			AuthRateLimit:   20,
		},
		Database: DatabaseConfig{
			SSL:         false,
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 10,
		},
		Schedule: ScheduleConfig{
			Timezone:                 "America/Sao_Paulo",
			BlacklistCleanupInterval: 30 * time.Second,
			DailyTripsInterval:       time.Hour,
			DailyTripsDaysAhead:      1,
			MaxBackoff:               5 * time.Minute,
		},
		Events: EventsConfig{
			Transport:     "gochannel",
			RedisAddr:     "localhost:6379",
			ConsumerGroup: "van-bff",
		},
		Mail: MailConfig{
			From: "nao-responda@van-bff.local",
		},
	}
}

var envMappings = map[string]string{
	"app_name":                   "app.name",
	"log_level":                  "app.log_level",
	"port":                       "server.port",
	"request_timeout":            "server.request_timeout",
	"shutdown_timeout":           "server.shutdown_timeout",
	"cors_origins":               "server.cors_origins",
	"auth_rate_limit":            "server.auth_rate_limit",
	"database_url":               "database.url",
	"database_ssl":               "database.ssl",
	"database_auto_migrate":      "database.auto_migrate",
	"database_debug":             "database.debug",
	"jwt_secret":                 "auth.jwt_secret",
	"jwt_expires_in":             "auth.token_ttl",
	"bcrypt_cost":                "auth.bcrypt_cost",
	"admin_emails":               "auth.admin_emails",
	"timezone":                   "schedule.timezone",
	"blacklist_cleanup_interval": "schedule.blacklist_cleanup_interval",
	"daily_trips_interval":       "schedule.daily_trips_interval",
	"daily_trips_days_ahead":     "schedule.daily_trips_days_ahead",
	"job_max_backoff":            "schedule.max_backoff",
	"event_transport":            "events.transport",
	"redis_addr":                 "events.redis_addr",
	"redis_password":             "events.redis_password",
	"redis_db":                   "events.redis_db",
	"kafka_brokers":              "events.kafka_brokers",
	"event_consumer_group":       "events.consumer_group",
	"smtp_from":                  "mail.from",
}

var sliceConfigPaths = []string{
	"server.cors_origins",
	"events.kafka_brokers",
	"auth.admin_emails",
}

// envTransformFunc traduz DATABASE_URL -> database.url etc. Variáveis fora do
// mapa são ignoradas.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load lê .env (se existir), aplica os padrões e sobrepõe com o ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Schedule.Timezone, err))
	}
	if c.Schedule.BlacklistCleanupInterval <= 0 || c.Schedule.DailyTripsInterval <= 0 {
		errs = append(errs, errors.New("job intervals must be positive"))
	}
	if c.Schedule.DailyTripsDaysAhead < 0 {
		errs = append(errs, errors.New("DAILY_TRIPS_DAYS_AHEAD must not be negative"))
	}
	switch strings.ToLower(c.Events.Transport) {
	case "memory", "gochannel", "redis", "kafka":
	default:
		errs = append(errs, fmt.Errorf("unknown EVENT_TRANSPORT %q", c.Events.Transport))
	}
	if strings.EqualFold(c.Events.Transport, "kafka") && len(c.Events.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka transport"))
	}
	return errors.Join(errs...)
}

// DSN devolve a string de conexão com o sslmode ajustado conforme DATABASE_SSL.
func (d DatabaseConfig) DSN() string {
	if strings.Contains(d.URL, "sslmode=") {
		return d.URL
	}
	mode := "disable"
	if d.SSL {
		mode = "require"
	}
	if strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://") {
		sep := "?"
		if strings.Contains(d.URL, "?") {
			sep = "&"
		}
		return d.URL + sep + "sslmode=" + mode
	}
	return d.URL + " sslmode=" + mode
}
