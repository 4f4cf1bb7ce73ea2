package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. A non-empty path loads exactly
// that file; otherwise the standard locations are searched and a missing file
// falls back to defaults.
func New(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/receipt-agent/")
		v.AddConfigPath("$HOME/.receipt-agent")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("RECEIPT_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Verification service defaults
	v.SetDefault("verifier.api_url", "https://api.crinkl.xyz")
	v.SetDefault("verifier.api_key", "")
	v.SetDefault("verifier.timeout", "30s")

	// Mailbox defaults
	v.SetDefault("mailbox.source", "gmail")
	v.SetDefault("mailbox.mbox_path", "")

	// Gmail defaults
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.token_path", "")

	// Scan defaults
	v.SetDefault("scan.max_age_days", 14)
	v.SetDefault("scan.max_results", 50)
	v.SetDefault("scan.preview", false)

	// Ledger defaults
	v.SetDefault("ledger.type", "file")
	v.SetDefault("ledger.path", "")
	v.SetDefault("ledger.sqlite_path", "")
	v.SetDefault("ledger.mysql_dsn", "user:password@tcp(localhost:3306)/receipt_agent")
	v.SetDefault("ledger.bolt_path", "")

	// Allowlist defaults
	v.SetDefault("allowlist.source", "remote")
	v.SetDefault("allowlist.path", "vendors/allowlist.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets a 64-bit integer value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
