// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Push       PushConfig       `mapstructure:"push"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type     string `mapstructure:"type"` // "inmemory", "mongo" или "postgres"
	SeedFile string `mapstructure:"seed_file"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type PostgresConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Timezone        string        `mapstructure:"timezone"`
	DailyReportCron string        `mapstructure:"daily_report_cron"`
	DeadlineCron    string        `mapstructure:"deadline_cron"`
	OverdueCron     string        `mapstructure:"overdue_cron"`
	JobTimeout      time.Duration `mapstructure:"job_timeout"`
}

type PushConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ProjectID       string        `mapstructure:"project_id"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Endpoint        string        `mapstructure:"endpoint"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
}

type AuthConfig struct {
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RPM int `mapstructure:"rpm"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("logging.development", false)

	v.SetDefault("repository.type", "inmemory")

	v.SetDefault("mongo.database", "taskdesk")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("postgres.max_connections", 10)
	v.SetDefault("postgres.min_connections", 2)
	v.SetDefault("postgres.idle_timeout", 5*time.Minute)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "America/New_York")
	v.SetDefault("scheduler.daily_report_cron", "0 9 * * *")
	v.SetDefault("scheduler.deadline_cron", "0 * * * *")
	v.SetDefault("scheduler.overdue_cron", "0 * * * *")
	v.SetDefault("scheduler.job_timeout", 5*time.Minute)

	v.SetDefault("push.enabled", false)
	v.SetDefault("push.breaker_timeout", 30*time.Second)
	v.SetDefault("push.breaker_failures", 5)

	v.SetDefault("auth.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rate_limit.rpm", 100)
}

// Load читает yaml-файл и переменные окружения TASKDESK_*.
// Пустой path - только значения по умолчанию и окружение.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TASKDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("чтение конфига %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "inmemory":
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("конфиг: mongo.uri обязателен для repository.type=mongo")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return fmt.Errorf("конфиг: postgres.url обязателен для repository.type=postgres")
		}
	default:
		return fmt.Errorf("конфиг: неизвестный repository.type %q", c.Repository.Type)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("конфиг: scheduler.timezone: %w", err)
	}

	if c.Push.Enabled && c.Push.ProjectID == "" {
		return fmt.Errorf("конфиг: push.project_id обязателен при push.enabled")
	}

	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
