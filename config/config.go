package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	// Store
	DBDriver     string        `toml:"db_driver"` // postgres or sqlite
	PGHost       string        `toml:"pg_host"`
	PGPort       string        `toml:"pg_port"`
	PGDatabase   string        `toml:"pg_database"`
	PGUser       string        `toml:"pg_user"`
	PGPassword   string        `toml:"pg_password"`
	SQLitePath   string        `toml:"sqlite_path"`
	StoreTimeout time.Duration `toml:"store_timeout"`

	// Telegram Bot
	TelegramBotToken string `toml:"telegram_bot_token"`
	AuthorizedChatID string `toml:"authorized_chat_id"`

	// Photo hosting
	ImgurClientID string `toml:"imgur_client_id"`

	Timezone      string `toml:"timezone"`
	TasksPerPage  int    `toml:"tasks_per_page"`
	HTTPAddr      string `toml:"http_addr"`
	APIToken      string `toml:"api_token"` // HTTP API bearer token; empty disables the API
	WatchSchedule string `toml:"watch_schedule"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// DefaultConfig returns the values used when neither the file nor the environment set them
func DefaultConfig() *Config {
	return &Config{
		DBDriver:      "postgres",
		PGHost:        "localhost",
		PGPort:        "5432",
		PGDatabase:    "tasklist",
		PGUser:        "postgres",
		PGPassword:    "1234",
		SQLitePath:    "tasklist.db",
		StoreTimeout:  10 * time.Second,
		Timezone:      "Europe/Moscow",
		TasksPerPage:  5,
		HTTPAddr:      "127.0.0.1:8080",
		WatchSchedule: "@every 30s",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadConfig reads .env, then the optional TOML file, then the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv.Load() error: %v", err)
	}

	cfg := DefaultConfig()

	path := os.Getenv("TASKLIST_CONFIG")
	if path == "" {
		path = "tasklist.toml"
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if os.Getenv("TASKLIST_CONFIG") != "" {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.PGHost, "PGHOST")
	setString(&cfg.PGPort, "PGPORT")
	setString(&cfg.PGDatabase, "PGDATABASE")
	setString(&cfg.PGUser, "PGUSER")
	setString(&cfg.PGPassword, "PGPASSWORD")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.AuthorizedChatID, "AUTHORIZED_CHAT_ID")
	setString(&cfg.ImgurClientID, "IMGUR_CLIENT_ID")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.APIToken, "API_TOKEN")
	setString(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogFile, "LOG_FILE")

	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STORE_TIMEOUT %q: %w", v, err)
		}
		cfg.StoreTimeout = d
	}
	if v := os.Getenv("TASKS_PER_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid TASKS_PER_PAGE %q", v)
		}
		cfg.TasksPerPage = n
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// PostgresDSN builds the connection string from the PG* settings
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.PGHost, c.PGPort, c.PGUser, c.PGPassword, c.PGDatabase)
}

// AdminChatID parses AuthorizedChatID; zero means unset
func (c *Config) AdminChatID() int64 {
	if c.AuthorizedChatID == "" {
		return 0
	}
	id, err := strconv.ParseInt(c.AuthorizedChatID, 10, 64)
	if err != nil {
		log.Printf("Ignoring invalid AUTHORIZED_CHAT_ID %q: %v", c.AuthorizedChatID, err)
		return 0
	}
	return id
}

// Location loads the civil timezone used for completion timestamps
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, falling back to UTC+3: %v", c.Timezone, err)
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}
