package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HistoryBackendCSV      = "csv"
	HistoryBackendSQLite   = "sqlite"
	HistoryBackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	Weather  WeatherConfig
	History  HistoryConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Session  SessionConfig
	MQTT     MQTTConfig
}

type ServerConfig struct {
	Port int
}

// ModelConfig locates the classifier artifact. With Optional set, a failed
// load is not fatal and predictions answer ModelUnavailable.
type ModelConfig struct {
	Path     string
	Optional bool
}

type WeatherConfig struct {
	GeocodeURL  string
	ForecastURL string
	TimeoutSec  int
	CacheTTLSec int
}

func (w WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

func (w WeatherConfig) CacheTTL() time.Duration {
	return time.Duration(w.CacheTTLSec) * time.Second
}

type HistoryConfig struct {
	Backend string
	Path    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

type SessionConfig struct {
	Secret      string
	ExpiryHours int
}

type MQTTConfig struct {
	BrokerURL         string
	Topic             string
	ConnectTimeoutSec int
}

func (m MQTTConfig) ConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeoutSec) * time.Second
}

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	weatherTimeout, err := getIntEnv("WEATHER_TIMEOUT_SEC", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_TIMEOUT_SEC: %w", err)
	}
	if weatherTimeout <= 0 {
		return nil, fmt.Errorf("invalid WEATHER_TIMEOUT_SEC: must be positive, got %d", weatherTimeout)
	}

	geocodeTTL, err := getIntEnv("WEATHER_CACHE_TTL_SEC", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_CACHE_TTL_SEC: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	modelOptional, err := getBoolEnv("MODEL_OPTIONAL", false)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_OPTIONAL: %w", err)
	}
	mqttTimeout, err := getIntEnv("MQTT_CONNECT_TIMEOUT_SEC", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT_CONNECT_TIMEOUT_SEC: %w", err)
	}
	if mqttTimeout <= 0 {
		return nil, fmt.Errorf("invalid MQTT_CONNECT_TIMEOUT_SEC: must be positive, got %d", mqttTimeout)
	}

	redisEnabled, err := getBoolEnv("REDIS_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}
	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionExpiry, err := getIntEnv("SESSION_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRY_HOURS: %w", err)
	}

	backend := strings.ToLower(getEnv("HISTORY_BACKEND", HistoryBackendCSV))
	switch backend {
	case HistoryBackendCSV, HistoryBackendSQLite, HistoryBackendPostgres:
	default:
		return nil, fmt.Errorf("invalid HISTORY_BACKEND %q: want csv, sqlite or postgres", backend)
	}

	historyPath := getEnv("HISTORY_PATH", "")
	if historyPath == "" {
		historyPath = "riwayat_prediksi.csv"
		if backend == HistoryBackendSQLite {
			historyPath = "riwayat_prediksi.db"
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Model: ModelConfig{
			Path:     getEnv("MODEL_PATH", "model_klasifikasi_kualitas_kopi.json"),
			Optional: modelOptional,
		},
		Weather: WeatherConfig{
			GeocodeURL:  getEnv("GEOCODE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
			ForecastURL: getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			TimeoutSec:  weatherTimeout,
			CacheTTLSec: geocodeTTL,
		},
		History: HistoryConfig{
			Backend: backend,
			Path:    historyPath,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "coffee"),
			Password: getEnv("DB_PASSWORD", "coffee_dev_password"),
			Name:     getEnv("DB_NAME", "coffee"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", "coffee-dev-session-secret"),
			ExpiryHours: sessionExpiry,
		},
		MQTT: MQTTConfig{
			BrokerURL:         getEnv("MQTT_URL", ""),
			Topic:             getEnv("MQTT_TOPIC", "coffee/predictions"),
			ConnectTimeoutSec: mqttTimeout,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
