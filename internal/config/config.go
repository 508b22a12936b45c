package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	BooksSheetURL string        `mapstructure:"BOOKS_SHEET_URL"`
	TalksSheetURL string        `mapstructure:"TALKS_SHEET_URL"`
	NewsSheetURL  string        `mapstructure:"NEWS_SHEET_URL"`
	CacheBackend  string        `mapstructure:"CACHE_BACKEND"`
	CachePath     string        `mapstructure:"CACHE_PATH"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	PostgresURL   string        `mapstructure:"POSTGRES_URL"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	DefaultLang   string        `mapstructure:"DEFAULT_LANG"`
	ShellPath     string        `mapstructure:"SHELL_PATH"`
	FetchTimeout  time.Duration `mapstructure:"FETCH_TIMEOUT"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CACHE_BACKEND", "sqlite")
	viper.SetDefault("CACHE_PATH", "site-cache.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CACHE_TTL", "1h")
	viper.SetDefault("DEFAULT_LANG", "es")
	viper.SetDefault("FETCH_TIMEOUT", "15s")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
