package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	BackendMemory = "memory"
	BackendGorm   = "gorm"
	BackendMongo  = "mongo"
	BackendValkey = "valkey"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Telegram   TelegramConfig
	RapidAPI   RapidAPIConfig
	History    HistoryConfig
	Session    SessionConfig
	Database   DatabaseConfig
	Mongo      MongoConfig
	Valkey     ValkeyConfig
	WorkerPool WorkerPoolConfig
	Monitor    MonitorConfig
}

type AppConfig struct {
	Version     string
	Port        string
	Debug       bool
	Environment string
	BasePath    string
	BaseDir     string
	Timezone    string
	ServerID    string
	BasicAuth   []string
}

type TelegramConfig struct {
	Token         string
	APIEndpoint   string
	AdminIDs      []int64
	Mode          string // polling | webhook
	WebhookURL    string
	WebhookSecret string
	PollTimeout   int // seconds
}

type RapidAPIConfig struct {
	BaseURL       string
	Host          string
	Keys          []string
	Timeout       time.Duration
	RatePerSec    float64
	Burst         int
	CityAttempts  int
	PhotoCacheTTL time.Duration
}

type HistoryConfig struct {
	Backend string // memory | gorm | mongo | valkey
}

type SessionConfig struct {
	Backend string // memory | valkey
	TTL     time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type ValkeyConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type MonitorConfig struct {
	BufferSize int
	TTL        time.Duration
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:     "v1.0.0",
		Port:        getEnv("APP_PORT", "3000"),
		Debug:       getEnvBool("APP_DEBUG", false),
		Environment: getEnv("APP_ENV", "development"),
		BasePath:    getEnv("APP_BASE_PATH", ""),
		BaseDir:     baseDir,
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		ServerID:    getEnv("SERVER_ID", ""),
		BasicAuth:   basicAuth,
	}

	mode := ModePolling
	if getEnvBool("TELEGRAM_WEBHOOK", false) {
		mode = ModeWebhook
	}
	tgCfg := TelegramConfig{
		Token:         getEnv("TELEGRAM_TOKEN", ""),
		APIEndpoint:   getEnv("TELEGRAM_API_ENDPOINT", ""),
		AdminIDs:      getEnvInt64List("TELEGRAM_ADMIN_IDS"),
		Mode:          mode,
		WebhookURL:    getEnv("TELEGRAM_WEBHOOK_URL", ""),
		WebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		PollTimeout:   getEnvInt("TELEGRAM_POLL_TIMEOUT", 30),
	}

	rapidCfg := RapidAPIConfig{
		BaseURL:       getEnv("RAPIDAPI_BASE_URL", "https://hotels4.p.rapidapi.com"),
		Host:          getEnv("RAPIDAPI_HOST", "hotels4.p.rapidapi.com"),
		Keys:          getEnvList("RAPIDAPI_KEYS"),
		Timeout:       getEnvDuration("RAPIDAPI_TIMEOUT", 10*time.Second),
		RatePerSec:    getEnvFloat("RAPIDAPI_RATE_PER_SEC", 5),
		Burst:         getEnvInt("RAPIDAPI_BURST", 5),
		CityAttempts:  getEnvInt("RAPIDAPI_CITY_ATTEMPTS", 3),
		PhotoCacheTTL: getEnvDuration("RAPIDAPI_PHOTO_CACHE_TTL", 30*time.Minute),
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Name:     getEnv("DB_NAME", filepath.Join(baseDir, "hotelbot.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	cfg := &Config{
		App:      appCfg,
		Telegram: tgCfg,
		RapidAPI: rapidCfg,
		History:  HistoryConfig{Backend: strings.ToLower(getEnv("HISTORY_BACKEND", BackendGorm))},
		Session: SessionConfig{
			Backend: strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
			TTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Database: dbCfg,
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "hotelbot"),
			Collection: getEnv("MONGO_COLLECTION", "search_history"),
		},
		Valkey: ValkeyConfig{
			Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "hotelbot:"),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("MESSAGE_WORKER_POOL_SIZE", 20),
			QueueSize: getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 1000),
		},
		Monitor: MonitorConfig{
			BufferSize: getEnvInt("MONITOR_BUFFER_SIZE", 200),
			TTL:        getEnvDuration("MONITOR_TTL", time.Hour),
		},
	}

	Global = cfg
	return cfg, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Telegram,
		validation.Field(&c.Telegram.Token, validation.Required),
		validation.Field(&c.Telegram.Mode, validation.In(ModePolling, ModeWebhook)),
		validation.Field(&c.Telegram.WebhookURL, validation.When(c.Telegram.Mode == ModeWebhook, validation.Required)),
		validation.Field(&c.Telegram.PollTimeout, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if err := validation.ValidateStruct(&c.RapidAPI,
		validation.Field(&c.RapidAPI.BaseURL, validation.Required),
		validation.Field(&c.RapidAPI.Keys, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.RapidAPI.CityAttempts, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("rapidapi: %w", err)
	}
	if err := validation.ValidateStruct(&c.History,
		validation.Field(&c.History.Backend, validation.Required,
			validation.In(BackendMemory, BackendGorm, BackendMongo, BackendValkey)),
	); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := validation.ValidateStruct(&c.Session,
		validation.Field(&c.Session.Backend, validation.Required, validation.In(BackendMemory, BackendValkey)),
		validation.Field(&c.Session.TTL, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.When(c.History.Backend == BackendGorm,
			validation.Required, validation.In("sqlite", "postgres"))),
		validation.Field(&c.Database.Name, validation.When(c.History.Backend == BackendGorm, validation.Required)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := validation.ValidateStruct(&c.Mongo,
		validation.Field(&c.Mongo.URI, validation.When(c.History.Backend == BackendMongo, validation.Required)),
		validation.Field(&c.Mongo.Database, validation.When(c.History.Backend == BackendMongo, validation.Required)),
	); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	usesValkey := c.History.Backend == BackendValkey || c.Session.Backend == BackendValkey
	if err := validation.ValidateStruct(&c.Valkey,
		validation.Field(&c.Valkey.Address, validation.When(usesValkey, validation.Required)),
	); err != nil {
		return fmt.Errorf("valkey: %w", err)
	}
	return validation.ValidateStruct(&c.WorkerPool,
		validation.Field(&c.WorkerPool.Size, validation.Min(1)),
		validation.Field(&c.WorkerPool.QueueSize, validation.Min(1)),
	)
}
