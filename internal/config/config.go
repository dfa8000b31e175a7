package config

import (
	"net"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the optional track history.
// History is enabled only when Host is set.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	Retention          time.Duration
}

// Enabled reports whether a database has been configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for the snapshot archive.
type MinIOConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	Bucket          string
	UseSSL          bool
	ArchiveInterval time.Duration
}

// Enabled reports whether object storage has been configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// RadarConfig describes how to reach the iNav Radar node.
type RadarConfig struct {
	Enabled       bool
	BaseURL       string
	PollInterval  time.Duration
	RetryInterval time.Duration
	Timeout       time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Host            string
	Port            string
	Debug           bool
	WebDir          string
	ShutdownTimeout time.Duration
	Log             LogConfig
	Radar           RadarConfig
	Database        DatabaseConfig
	MinIO           MinIOConfig
}

// Addr returns the listen address built from Host and Port.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	debug := getEnvBool("APP_DEBUG", true)
	defaultFormat := "json"
	if debug {
		defaultFormat = "text"
	}

	return &AppConfig{
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "5000"),
		Debug:           debug,
		WebDir:          getEnv("WEB_DIR", ""),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultFormat),
		},
		Radar: RadarConfig{
			Enabled:       getEnvBool("RADAR_ENABLED", false),
			BaseURL:       getEnv("RADAR_BASE_URL", "http://192.168.4.1"),
			PollInterval:  getEnvDuration("RADAR_POLL_INTERVAL", time.Second),
			RetryInterval: getEnvDuration("RADAR_RETRY_INTERVAL", 2*time.Second),
			Timeout:       getEnvDuration("RADAR_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			Retention:          getEnvDuration("TRACK_RETENTION", 24*time.Hour),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", ""),
			AccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:       getEnv("MINIO_SECRET_KEY", ""),
			Bucket:          getEnv("MINIO_BUCKET", "radarmap"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
			ArchiveInterval: getEnvDuration("ARCHIVE_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
