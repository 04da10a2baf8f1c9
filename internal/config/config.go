// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	DBName             string
	SSLMode            string
	MaxConcurrentReads int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket holding history exports.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ForecastConfig carries the engine defaults. The MAPE thresholds and drift
// multiplier are empirical and kept configurable.
type ForecastConfig struct {
	HorizonDays          int
	HistoryDays          int
	MaxHorizonDays       int
	LeadTimeDays         int
	ReviewPeriodDays     int
	CoverBufferDays      int
	ServiceLevel         float64
	DriftWindowDays      int
	DriftMultiplier      float64
	ConfidenceHighMAPE   float64
	ConfidenceMediumMAPE float64
	IncludeUnmapped      bool
	Marketplaces         []string
	ActionConcurrency    int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "demandcast")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONCURRENT_READS", 10)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_HISTORY_DAYS", 365)
		viper.SetDefault("FORECAST_MAX_HORIZON_DAYS", 60)
		viper.SetDefault("FORECAST_LEAD_TIME_DAYS", 14)
		viper.SetDefault("FORECAST_REVIEW_PERIOD_DAYS", 7)
		viper.SetDefault("FORECAST_COVER_BUFFER_DAYS", 14)
		viper.SetDefault("FORECAST_SERVICE_LEVEL", 0.95)
		viper.SetDefault("FORECAST_DRIFT_WINDOW_DAYS", 14)
		viper.SetDefault("FORECAST_DRIFT_MULTIPLIER", 1.5)
		viper.SetDefault("FORECAST_CONFIDENCE_HIGH_MAPE", 0.20)
		viper.SetDefault("FORECAST_CONFIDENCE_MEDIUM_MAPE", 0.40)
		viper.SetDefault("FORECAST_INCLUDE_UNMAPPED", false)
		viper.SetDefault("FORECAST_MARKETPLACES", []string{"amazon", "shopify", "ebay", "walmart"})
		viper.SetDefault("FORECAST_ACTION_CONCURRENCY", 8)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:               viper.GetString("DB_HOST"),
				Port:               viper.GetString("DB_PORT"),
				User:               viper.GetString("DB_USER"),
				Password:           viper.GetString("DB_PASSWORD"),
				DBName:             viper.GetString("DB_NAME"),
				SSLMode:            viper.GetString("DB_SSLMODE"),
				MaxConcurrentReads: viper.GetInt("DB_MAX_CONCURRENT_READS"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Forecast: ForecastConfig{
				HorizonDays:          viper.GetInt("FORECAST_HORIZON_DAYS"),
				HistoryDays:          viper.GetInt("FORECAST_HISTORY_DAYS"),
				MaxHorizonDays:       viper.GetInt("FORECAST_MAX_HORIZON_DAYS"),
				LeadTimeDays:         viper.GetInt("FORECAST_LEAD_TIME_DAYS"),
				ReviewPeriodDays:     viper.GetInt("FORECAST_REVIEW_PERIOD_DAYS"),
				CoverBufferDays:      viper.GetInt("FORECAST_COVER_BUFFER_DAYS"),
				ServiceLevel:         viper.GetFloat64("FORECAST_SERVICE_LEVEL"),
				DriftWindowDays:      viper.GetInt("FORECAST_DRIFT_WINDOW_DAYS"),
				DriftMultiplier:      viper.GetFloat64("FORECAST_DRIFT_MULTIPLIER"),
				ConfidenceHighMAPE:   viper.GetFloat64("FORECAST_CONFIDENCE_HIGH_MAPE"),
				ConfidenceMediumMAPE: viper.GetFloat64("FORECAST_CONFIDENCE_MEDIUM_MAPE"),
				IncludeUnmapped:      viper.GetBool("FORECAST_INCLUDE_UNMAPPED"),
				Marketplaces:         normalizeList(viper.GetStringSlice("FORECAST_MARKETPLACES")),
				ActionConcurrency:    viper.GetInt("FORECAST_ACTION_CONCURRENCY"),
			},
		}
	})

	return instance
}

// normalizeList flattens comma-separated entries, lowercases and drops blanks.
func normalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
