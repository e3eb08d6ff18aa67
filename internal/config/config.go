package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Chat       ChatConfig
	Parser     ParserConfig
	Sixer      SixerConfig
	Ranking    RankingConfig
	Listings   ListingsConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the fields below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	AutoMigrate        bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	AllowedMethods  string
	AllowedHeaders  string
	ShutdownTimeout time.Duration
}

// ChatConfig controls the canned-reply selector
type ChatConfig struct {
	DelayMin            time.Duration
	DelayMax            time.Duration
	FollowUpProbability float64
	CategoriesPath      string // optional YAML catalogue overriding the embedded one
	Seed                uint64 // 0 seeds from the clock
}

// ParserConfig controls the listing field extractor
type ParserConfig struct {
	Delay time.Duration
}

// SixerConfig controls the simulated Sixer checkout
type SixerConfig struct {
	PaymentDelay time.Duration
	MatchDelay   time.Duration
	SuccessRate  float64
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightVibe    float64
	WeightPrice   float64
	WeightRecency float64
}

// ListingsConfig holds listing search configuration
type ListingsConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "roomie"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
			AutoMigrate:        getEnvAsBool("PG_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-ID"),

			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Chat: ChatConfig{
			DelayMin:            getEnvAsDuration("CHAT_DELAY_MIN", time.Second),
			DelayMax:            getEnvAsDuration("CHAT_DELAY_MAX", 3*time.Second),
			FollowUpProbability: getEnvAsFloat("CHAT_FOLLOW_UP_PROBABILITY", 0.5),
			CategoriesPath:      getEnv("CHAT_CATEGORIES_PATH", ""),
			Seed:                uint64(getEnvAsInt("RANDOM_SEED", 0)),
		},
		Parser: ParserConfig{
			Delay: getEnvAsDuration("PARSE_DELAY", 2*time.Second),
		},
		Sixer: SixerConfig{
			PaymentDelay: getEnvAsDuration("SIXER_PAYMENT_DELAY", time.Second),
			MatchDelay:   getEnvAsDuration("SIXER_MATCH_DELAY", 500*time.Millisecond),
			SuccessRate:  getEnvAsFloat("SIXER_SUCCESS_RATE", 0.9),
		},
		Ranking: RankingConfig{
			WeightVibe:    getEnvAsFloat("RANK_WEIGHT_VIBE", 0.5),
			WeightPrice:   getEnvAsFloat("RANK_WEIGHT_PRICE", 0.3),
			WeightRecency: getEnvAsFloat("RANK_WEIGHT_RECENCY", 0.2),
		},
		Listings: ListingsConfig{
			DefaultLimit: getEnvAsInt("LISTINGS_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvAsInt("LISTINGS_MAX_LIMIT", 100),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			LogDir:     getEnv("LOG_DIR", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Chat.DelayMin < 0 || c.Chat.DelayMax < c.Chat.DelayMin {
		return fmt.Errorf("invalid chat delay range: min=%s max=%s", c.Chat.DelayMin, c.Chat.DelayMax)
	}
	if c.Chat.FollowUpProbability < 0 || c.Chat.FollowUpProbability > 1 {
		return fmt.Errorf("invalid follow-up probability: %.2f", c.Chat.FollowUpProbability)
	}
	if c.Sixer.SuccessRate < 0 || c.Sixer.SuccessRate > 1 {
		return fmt.Errorf("invalid sixer success rate: %.2f", c.Sixer.SuccessRate)
	}
	if c.Listings.DefaultLimit <= 0 || c.Listings.MaxLimit < c.Listings.DefaultLimit {
		return fmt.Errorf("invalid listing limits: default=%d max=%d", c.Listings.DefaultLimit, c.Listings.MaxLimit)
	}
	return nil
}

// PostgreSQLEnabled reports whether a database was configured. Without one the
// listing store lives in memory.
func (c *Config) PostgreSQLEnabled() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	return splitList(c.Server.AllowedOrigins)
}

// Helper functions

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid bool value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}
