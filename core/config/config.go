package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	LogLevel   string           `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// AutoMigrate creates the tables on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

type LLMConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type StorageConfig struct {
	ArchiveTraces bool   `mapstructure:"archive_traces"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type SchedulingConfig struct {
	DefaultCount       int               `mapstructure:"default_count"`
	ScoreTimezone      string            `mapstructure:"score_timezone"` // "UTC" or "local"
	DefaultPreferences PreferencesConfig `mapstructure:"default_preferences"`
}

type PreferencesConfig struct {
	WorkDays               []int  `mapstructure:"work_days"`
	WorkHoursStart         string `mapstructure:"work_hours_start"`
	WorkHoursEnd           string `mapstructure:"work_hours_end"`
	Timezone               string `mapstructure:"timezone"`
	DefaultDurationMinutes int    `mapstructure:"default_duration_minutes"`
	BufferMinutes          int    `mapstructure:"buffer_minutes"`
	AllowBackToBack        bool   `mapstructure:"allow_back_to_back"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "slotapi")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("llm.base_url", "https://eu.api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.cache_ttl", "24h")
	v.SetDefault("storage.archive_traces", false)
	v.SetDefault("storage.region", "eu-west-1")
	v.SetDefault("scheduling.default_count", 3)
	v.SetDefault("scheduling.score_timezone", "UTC")
	v.SetDefault("scheduling.default_preferences.work_days", []int{1, 2, 3, 4, 5})
	v.SetDefault("scheduling.default_preferences.work_hours_start", "09:00")
	v.SetDefault("scheduling.default_preferences.work_hours_end", "18:00")
	v.SetDefault("scheduling.default_preferences.timezone", "America/Los_Angeles")
	v.SetDefault("scheduling.default_preferences.default_duration_minutes", 30)
	v.SetDefault("scheduling.default_preferences.buffer_minutes", 10)
	v.SetDefault("scheduling.default_preferences.allow_back_to_back", false)
	v.SetDefault("log_level", "info")

	// Keys without a real default still need registering so env vars reach Unmarshal.
	for _, key := range []string{
		"server.base_url", "database.password", "redis.password", "llm.api_key",
		"storage.bucket", "storage.endpoint", "storage.access_key", "storage.secret_key",
		"auth.jwt_secret",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads .env, config.yaml and the environment, then stores the result for Get.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(&cfg)
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	switch strings.ToLower(c.Scheduling.ScoreTimezone) {
	case "utc", "local":
	default:
		return fmt.Errorf("scheduling.score_timezone must be UTC or local, got %q", c.Scheduling.ScoreTimezone)
	}
	if c.Storage.ArchiveTraces && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when storage.archive_traces is enabled")
	}
	return nil
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config not loaded")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
