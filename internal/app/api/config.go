package api

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.temporal.io/sdk/client"
)

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

// Order store backends selectable through ORDER_STORE.
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config carries the settings for the API and worker processes.
// Keys match the environment variable names in lower case.
type Config struct {
	Port              int           `koanf:"port"`
	OrderStore        string        `koanf:"order_store"`
	MongoURI          string        `koanf:"mongo_uri"`
	MongoDatabase     string        `koanf:"mongo_database"`
	MongoCollection   string        `koanf:"mongo_collection"`
	PostgresDSN       string        `koanf:"postgres_dsn"`
	LogLevel          string        `koanf:"log_level"`
	TemporalAddress   string        `koanf:"temporal_address"`
	TemporalNamespace string        `koanf:"temporal_namespace"`
	TemporalDisabled  bool          `koanf:"temporal_disabled"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	AppVersion        string        `koanf:"app_version"`
}

var knownKeys = []string{
	"port", "order_store", "mongo_uri", "mongo_database", "mongo_collection",
	"postgres_dsn", "log_level", "temporal_address", "temporal_namespace",
	"temporal_disabled", "shutdown_timeout", "app_version",
}

func defaults() map[string]any {
	return map[string]any{
		"port":               5000,
		"mongo_database":     "orderdesk",
		"mongo_collection":   "orders",
		"log_level":          "info",
		"temporal_address":   client.DefaultHostPort,
		"temporal_namespace": client.DefaultNamespace,
		"temporal_disabled":  false,
		"shutdown_timeout":   "10s",
		"app_version":        "dev",
	}
}

// LoadConfig reads config.yaml, .env and the process environment from the working directory.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(defaultConfigFile, defaultEnvFile)
}

// LoadConfigFrom layers defaults, the yaml file, the dotenv file and the process
// environment (highest priority), then validates the result. Missing files are skipped.
func LoadConfigFrom(configFile, envFile string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", configFile, err)
		}
	}
	if envFile != "" {
		envFileMap, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values := make(map[string]any, len(envFileMap))
			for key, value := range envFileMap {
				if name := keyTransformer(key); name != "" {
					values[name] = value
				}
			}
			if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	if err := k.Load(env.Provider("", ".", keyTransformer), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// keyTransformer lower-cases known variables and drops everything else.
func keyTransformer(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if slices.Contains(knownKeys, key) {
		return key
	}
	return ""
}

func (c *Config) normalize() {
	c.OrderStore = strings.ToLower(strings.TrimSpace(c.OrderStore))
	c.MongoURI = strings.TrimSpace(c.MongoURI)
	c.PostgresDSN = strings.TrimSpace(c.PostgresDSN)
	if c.OrderStore == "" {
		switch {
		case c.MongoURI != "":
			c.OrderStore = StoreMongo
		case c.PostgresDSN != "":
			c.OrderStore = StorePostgres
		default:
			c.OrderStore = StoreMemory
		}
	}
}

// Validate checks that the selected store is usable and numeric settings are in range.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	switch c.OrderStore {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when ORDER_STORE=mongo")
		}
		if c.MongoDatabase == "" || c.MongoCollection == "" {
			return errors.New("MONGO_DATABASE and MONGO_COLLECTION must not be empty")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when ORDER_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %s", c.ShutdownTimeout)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("port=%d order_store=%s", c.Port, c.OrderStore))
	switch c.OrderStore {
	case StoreMongo:
		b.WriteString(fmt.Sprintf(" mongo_uri=%s mongo_database=%s mongo_collection=%s", maskURL(c.MongoURI), c.MongoDatabase, c.MongoCollection))
	case StorePostgres:
		b.WriteString(fmt.Sprintf(" postgres_dsn=%s", maskURL(c.PostgresDSN)))
	}
	b.WriteString(fmt.Sprintf(" log_level=%s temporal_address=%s temporal_namespace=%s temporal_disabled=%t shutdown_timeout=%s app_version=%s",
		c.LogLevel, c.TemporalAddress, c.TemporalNamespace, c.TemporalDisabled, c.ShutdownTimeout, c.AppVersion))
	return b.String()
}

// maskURL hides credentials in a connection string.
func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	if i := strings.LastIndex(url, "@"); i >= 0 {
		scheme := ""
		if j := strings.Index(url, "://"); j >= 0 && j < i {
			scheme = url[:j+3]
		}
		return scheme + "****@" + url[i+1:]
	}
	return url
}
