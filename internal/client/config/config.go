package config

import "time"

// Config holds runtime settings for the mobank CLI.
//
// Units: RequestTimeout and ReconnectDelay are time.Duration values.
type Config struct {
	APIBaseURL string
	WSBaseURL  string

	// StoreBackend is one of "sqlite", "redis" or "memory".
	StoreBackend string
	StorePath    string
	RedisAddr    string
	// StoreSecret enables value sealing when non-empty.
	StoreSecret string

	RequestTimeout time.Duration
	ReconnectDelay time.Duration
	SeedRecipients bool
	LogLevel       string

	// Avatar uploads are off while AvatarBucket is empty.
	AvatarBucket    string
	AvatarRegion    string
	AvatarEndpoint  string
	AvatarPublicURL string
	AvatarAccessKey string
	AvatarSecretKey string
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.WSBaseURL = "ws://127.0.0.1:8000"
	c.StoreBackend = BackendSQLite
	c.StorePath = "mobank.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RequestTimeout = 15 * time.Second
	c.ReconnectDelay = 2 * time.Second
	c.SeedRecipients = true
	c.LogLevel = "info"
}

// AvatarsEnabled reports whether recipient images go to object storage.
func (c *Config) AvatarsEnabled() bool {
	return c.AvatarBucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment (seeded from a .env file if present), JSON (if present) and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
