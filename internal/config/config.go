package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	SparkPost SparkPostConfig `yaml:"sparkpost"`
	Mailer    MailerConfig    `yaml:"mailer"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Redis     RedisConfig     `yaml:"redis"`
	Events    EventsConfig    `yaml:"events"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// SparkPostConfig holds SparkPost API configuration
type SparkPostConfig struct {
	APIKey         string `yaml:"api_key"`
	MasterAPIKey   string `yaml:"master_api_key"`
	BaseURL        string `yaml:"base_url"`
	EUEndpoint     bool   `yaml:"eu_endpoint"`
	SubaccountID   int    `yaml:"subaccount_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Verbose        bool   `yaml:"verbose"`
}

// Timeout returns the configured timeout as a duration
func (c SparkPostConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MasterConfig returns a copy of the config using the master key,
// which is meant for account-level operations (domains, webhooks).
// Falls back to the regular key when no master key is set.
func (c SparkPostConfig) MasterConfig() SparkPostConfig {
	master := c
	if c.MasterAPIKey != "" {
		master.APIKey = c.MasterAPIKey
	}
	return master
}

// MailerConfig holds the payload-builder and send-path configuration
type MailerConfig struct {
	DisableSending     bool           `yaml:"disable_sending"`
	EnableLogging      bool           `yaml:"enable_logging"`
	LogFolder          string         `yaml:"log_folder"`
	ProvidePlain       bool           `yaml:"provide_plain"`
	InlineCSS          bool           `yaml:"inline_css"`
	OverrideAdminEmail bool           `yaml:"override_admin_email"`
	AdminEmail         string         `yaml:"admin_email"`
	DefaultFrom        string         `yaml:"default_from"`
	ForceSender        string         `yaml:"force_sender"`
	DefaultParams      map[string]any `yaml:"default_params"`
}

// WebhookConfig holds the inbound webhook receiver configuration
type WebhookConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	LogDir   string `yaml:"log_dir"`
	// BaseURL is the externally reachable URL of this service, used
	// when provisioning webhooks pointing back at us.
	BaseURL string `yaml:"base_url"`
}

// RedisConfig holds the event-cache redis connection settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EventsConfig holds event-search cache settings
type EventsConfig struct {
	PerPage         int `yaml:"per_page"`
	LookbackDays    int `yaml:"lookback_days"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the cache TTL as a duration
func (c EventsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.SparkPost.TimeoutSeconds == 0 {
		cfg.SparkPost.TimeoutSeconds = 10
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Events.PerPage == 0 {
		cfg.Events.PerPage = 100
	}
	if cfg.Events.LookbackDays == 0 {
		cfg.Events.LookbackDays = 7
	}
	if cfg.Events.CacheTTLSeconds == 0 {
		cfg.Events.CacheTTLSeconds = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so secrets can live in .env locally and in real env vars in
// production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if apiKey := os.Getenv("SPARKPOST_API_KEY"); apiKey != "" {
		cfg.SparkPost.APIKey = apiKey
	}
	if masterKey := os.Getenv("SPARKPOST_MASTER_API_KEY"); masterKey != "" {
		cfg.SparkPost.MasterAPIKey = masterKey
		// The master key doubles as the sending key when no
		// dedicated key is configured.
		if cfg.SparkPost.APIKey == "" {
			cfg.SparkPost.APIKey = masterKey
		}
	}
	if baseURL := os.Getenv("SPARKPOST_BASE_URL"); baseURL != "" {
		cfg.SparkPost.BaseURL = baseURL
	}
	if eu := os.Getenv("SPARKPOST_EU"); eu != "" {
		cfg.SparkPost.EUEndpoint = parseBool(eu)
	}
	if sub := os.Getenv("SPARKPOST_SUBACCOUNT_ID"); sub != "" {
		if id, err := strconv.Atoi(sub); err == nil {
			cfg.SparkPost.SubaccountID = id
		}
	}
	if disabled := os.Getenv("SPARKPOST_SENDING_DISABLED"); disabled != "" {
		cfg.Mailer.DisableSending = parseBool(disabled)
	}
	if logging := os.Getenv("SPARKPOST_ENABLE_LOGGING"); logging != "" {
		cfg.Mailer.EnableLogging = parseBool(logging)
	}
	if sender := os.Getenv("SPARKPOST_FORCE_SENDER"); sender != "" {
		cfg.Mailer.ForceSender = sender
	}
	if dir := os.Getenv("SPARKPOST_WEBHOOK_LOG_DIR"); dir != "" {
		cfg.Webhook.LogDir = dir
	}
	if user := os.Getenv("SPARKPOST_WEBHOOK_USERNAME"); user != "" {
		cfg.Webhook.Username = user
	}
	if pass := os.Getenv("SPARKPOST_WEBHOOK_PASSWORD"); pass != "" {
		cfg.Webhook.Password = pass
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	return cfg, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
