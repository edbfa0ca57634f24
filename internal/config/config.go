package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Dispatch *dispatchConfig
	Notifier *notifierConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"dispatch"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"DISPATCH_ENGINE_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"DISPATCH_ENGINE_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"DISPATCH_ENGINE_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"DISPATCH_ENGINE_LOG_LEVEL" default:"info"`
	Auth            Auth
	MigrationFolder string `envconfig:"DISPATCH_ENGINE_MIGRATIONS_FOLDER" default:""`
}

type dispatchConfig struct {
	// FallbackSlotCapacity is the city-wide per-slot cap used when no
	// per-pro capacity rows exist for a date/slot.
	FallbackSlotCapacity int `envconfig:"DISPATCH_ENGINE_FALLBACK_SLOT_CAPACITY" default:"3"`
	// ProCacheTTL bounds the staleness of the active-pro read-through cache.
	ProCacheTTL string `envconfig:"DISPATCH_ENGINE_PRO_CACHE_TTL" default:"30s"`
}

type notifierConfig struct {
	Endpoint string `envconfig:"DISPATCH_ENGINE_NOTIFIER_ENDPOINT" default:""`
	Timeout  string `envconfig:"DISPATCH_ENGINE_NOTIFIER_TIMEOUT" default:"3s"`
}

type Auth struct {
	AuthenticationType string `envconfig:"DISPATCH_ENGINE_AUTH" default:""`
	LocalPrivateKey    string `envconfig:"DISPATCH_ENGINE_PRIVATE_KEY" default:""`
}

// NewDefault returns a config backed by an in-memory sqlite database.
// Used by the store test suites.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: ":memory:"},
		Service:  &svcConfig{Address: ":3443", MetricsAddress: ":8080", LogLevel: "info"},
		Dispatch: &dispatchConfig{FallbackSlotCapacity: 3, ProCacheTTL: "30s"},
		Notifier: &notifierConfig{Timeout: "3s"},
	}
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
