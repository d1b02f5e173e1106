package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
// Secrets come from the environment only, never from the config file.
type Config struct {
	BotToken string         `yaml:"-"`
	Telegram TelegramConfig `yaml:"telegram"`
	GLPI     GLPIConfig     `yaml:"glpi"`
	Checker  CheckerConfig  `yaml:"checker"`
	Storage  string         `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	LogLevel string         `yaml:"log_level"`

	// Priorities adds extra names for GLPI priorities, e.g. "asap: 6"
	Priorities map[string]int `yaml:"priorities"`
}

// TelegramConfig holds polling settings
type TelegramConfig struct {
	PollTimeout     time.Duration `yaml:"poll_timeout"`
	RestartInterval time.Duration `yaml:"restart_interval"`
	RestartBurst    int           `yaml:"restart_burst"`
	SkipPending     bool          `yaml:"skip_pending"`
}

// GLPIConfig holds ticketing backend settings
type GLPIConfig struct {
	URL       string        `yaml:"url"`
	AppToken  string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
	ListLimit int           `yaml:"list_limit"`
}

// CheckerConfig holds ticket status polling settings
type CheckerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout:     10 * time.Second,
			RestartInterval: time.Second,
			RestartBurst:    5,
			SkipPending:     true,
		},
		GLPI: GLPIConfig{
			Timeout:   15 * time.Second,
			ListLimit: 20,
		},
		Checker: CheckerConfig{
			Interval: time.Minute,
		},
		Storage: StorageMemory,
		Database: DatabaseConfig{
			Host: "localhost",
			Port: "5432",
			Name: "glpibot",
			User: "glpibot",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from an optional YAML file and then from
// environment variables, which take precedence. An empty path falls back
// to CONFIG_FILE.
func Load(path string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	var err error

	c.BotToken = os.Getenv("BOT_TOKEN")
	c.GLPI.AppToken = os.Getenv("GLPI_APP_TOKEN")
	c.Database.Password = os.Getenv("DB_PASSWORD")

	c.GLPI.URL = getEnv("GLPI_URL", c.GLPI.URL)
	c.Storage = getEnv("STORAGE_BACKEND", c.Storage)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)

	if c.Telegram.PollTimeout, err = getDuration("POLL_TIMEOUT", c.Telegram.PollTimeout); err != nil {
		return err
	}
	if c.Telegram.RestartInterval, err = getDuration("RESTART_INTERVAL", c.Telegram.RestartInterval); err != nil {
		return err
	}
	if c.Telegram.RestartBurst, err = getInt("RESTART_BURST", c.Telegram.RestartBurst); err != nil {
		return err
	}
	if c.Telegram.SkipPending, err = getBool("SKIP_PENDING", c.Telegram.SkipPending); err != nil {
		return err
	}
	if c.Checker.Interval, err = getDuration("CHECK_INTERVAL", c.Checker.Interval); err != nil {
		return err
	}
	if c.GLPI.Timeout, err = getDuration("BACKEND_TIMEOUT", c.GLPI.Timeout); err != nil {
		return err
	}

	return nil
}

func (c *Config) validate() error {
	// Validate required fields
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.GLPI.URL == "" {
		return fmt.Errorf("GLPI_URL is required")
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage)
	}

	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("POLL_TIMEOUT must be positive")
	}
	if c.Telegram.RestartBurst < 1 {
		return fmt.Errorf("RESTART_BURST must be at least 1")
	}
	if c.Checker.Interval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive")
	}

	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
