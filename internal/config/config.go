package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Whoop    WhoopConfig    `mapstructure:"whoop"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

// WhoopConfig stores the provider credentials and endpoints
type WhoopConfig struct {
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	APIBaseURL    string        `mapstructure:"api_base_url"`
	AuthBaseURL   string        `mapstructure:"auth_base_url"`
	RedirectURL   string        `mapstructure:"redirect_url"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Scopes        []string      `mapstructure:"scopes"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TokenKey      string        `mapstructure:"token_key"` // secret the token cipher key is derived from
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SyncConfig struct {
	QueueSize int           `mapstructure:"queue_size"` // capacity of the webhook-fed job queue
	Deadline  time.Duration `mapstructure:"deadline"`   // overall budget for one sync run, in seconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Convert timeouts to durations
	cfg.Whoop.Timeout = cfg.Whoop.Timeout * time.Second
	cfg.Sync.Deadline = cfg.Sync.Deadline * time.Second

	if len(cfg.Whoop.Scopes) == 0 {
		cfg.Whoop.Scopes = []string{
			"read:workout",
			"read:recovery",
			"read:sleep",
			"read:cycles",
			"read:profile",
			"offline",
		}
	}
	if cfg.Whoop.Timeout <= 0 {
		cfg.Whoop.Timeout = 30 * time.Second
	}
	if cfg.Sync.QueueSize <= 0 {
		cfg.Sync.QueueSize = 256
	}
	if cfg.Sync.Deadline <= 0 {
		cfg.Sync.Deadline = 2 * time.Minute
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
