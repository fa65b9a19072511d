package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "via-fatto-painel/common/config"

	"github.com/joho/godotenv"
)

// Directory backends.
const (
	BackendPostgres = "postgres"
	BackendRest     = "rest"
	BackendMemory   = "memory"
)

// DefaultFallbackTenantID is the build-time dev/preview tenant.
// Must be updated by hand if the reference environment's seed data changes.
const DefaultFallbackTenantID = "f136543f-0000-4000-8000-00000000982f"

// Config is the via-fatto-painel service configuration.
type Config struct {
	HTTP struct {
		Addr string
		// TrustForwardedHost takes the tenant host from X-Forwarded-Host.
		// Enable only behind an edge proxy that sets the header.
		TrustForwardedHost bool
	}
	Directory struct {
		Backend  string
		SeedFile string
		// FallbackMemory serves the memory directory when Postgres is unreachable.
		FallbackMemory bool
	}
	Database commoncfg.DatabaseConfig
	Rest     commoncfg.RestConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	Tenancy struct {
		FallbackTenantID string
		IsDevBuild       bool
		OverrideKey      string
		OverrideTTL      time.Duration
	}

	Events struct {
		RedisStream       string
		RedisStreamMaxLen int64
		MQTTEnabled       bool
		MQTT              commoncfg.MQTTConfig
		MQTTTopic         string
		QueueSize         int
	}

	MetricsEnabled bool

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, after loading .env if present.
func Load() *Config {
	// missing .env is normal outside local dev
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.TrustForwardedHost = getEnv("TRUST_FORWARDED_HOST", "false") == "true"

	cfg.Directory.Backend = strings.ToLower(getEnv("DIRECTORY_BACKEND", BackendMemory))
	cfg.Directory.SeedFile = getEnv("SEED_FILE", "")
	cfg.Directory.FallbackMemory = getEnv("DIRECTORY_FALLBACK_MEMORY", "false") == "true"

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "painel",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Rest = commoncfg.RestConfig{Timeout: 10 * time.Second}
	cfg.Rest.LoadFromEnv("REST")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Tenancy.FallbackTenantID = getEnv("FALLBACK_TENANT_ID", DefaultFallbackTenantID)
	cfg.Tenancy.IsDevBuild = getEnv("DEV_BUILD", "false") == "true"
	cfg.Tenancy.OverrideKey = getEnv("OVERRIDE_KEY", "active_tenant_id")
	cfg.Tenancy.OverrideTTL = time.Duration(parseInt(getEnv("OVERRIDE_TTL_HOURS", "0"), 0)) * time.Hour

	cfg.Events.RedisStream = getEnv("EVENTS_REDIS_STREAM", "")
	cfg.Events.RedisStreamMaxLen = int64(parseInt(getEnv("EVENTS_REDIS_STREAM_MAXLEN", "10000"), 10000))
	cfg.Events.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.Events.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "via-fatto-painel",
		QoS:      1,
	}
	cfg.Events.MQTT.LoadFromEnv("MQTT")
	cfg.Events.MQTTTopic = getEnv("MQTT_TOPIC", "painel/tenancy/resolutions")
	cfg.Events.QueueSize = parseInt(getEnv("EVENTS_QUEUE_SIZE", "1024"), 1024)

	cfg.MetricsEnabled = getEnv("METRICS_ENABLED", "true") == "true"

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
