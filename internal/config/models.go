package config

import "time"

// VerifierConfig represents the configuration for the verification service
type VerifierConfig struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// GmailConfig represents the configuration for the Gmail mailbox
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
}

// MboxConfig represents the configuration for the offline mbox mailbox
type MboxConfig struct {
	Path string
}

// ScanConfig represents the configuration for one scan run
type ScanConfig struct {
	MaxAgeDays int
	MaxResults int64
	Preview    bool
}

// LedgerConfig represents the configuration for the dedup ledger
type LedgerConfig struct {
	Type       string
	Path       string
	SQLitePath string
	MySQLDSN   string
	BoltPath   string
}

// AllowlistConfig represents the configuration for the vendor allowlist
type AllowlistConfig struct {
	Source string
	Path   string
}

// GetVerifier returns the verification service configuration
func (c *Config) GetVerifier() (VerifierConfig, error) {
	timeout, err := c.GetDuration("verifier.timeout")
	if err != nil {
		return VerifierConfig{}, err
	}
	return VerifierConfig{
		APIURL:  c.GetString("verifier.api_url"),
		APIKey:  c.GetString("verifier.api_key"),
		Timeout: timeout,
	}, nil
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		ClientID:     c.GetString("gmail.client_id"),
		ClientSecret: c.GetString("gmail.client_secret"),
		TokenPath:    c.GetString("gmail.token_path"),
	}
}

// GetMbox returns the mbox configuration
func (c *Config) GetMbox() MboxConfig {
	return MboxConfig{
		Path: c.GetString("mailbox.mbox_path"),
	}
}

// GetScan returns the scan configuration
func (c *Config) GetScan() ScanConfig {
	return ScanConfig{
		MaxAgeDays: c.GetInt("scan.max_age_days"),
		MaxResults: c.GetInt64("scan.max_results"),
		Preview:    c.GetBool("scan.preview"),
	}
}

// GetLedger returns the ledger configuration
func (c *Config) GetLedger() LedgerConfig {
	return LedgerConfig{
		Type:       c.GetString("ledger.type"),
		Path:       c.GetString("ledger.path"),
		SQLitePath: c.GetString("ledger.sqlite_path"),
		MySQLDSN:   c.GetString("ledger.mysql_dsn"),
		BoltPath:   c.GetString("ledger.bolt_path"),
	}
}

// GetAllowlist returns the allowlist configuration
func (c *Config) GetAllowlist() AllowlistConfig {
	return AllowlistConfig{
		Source: c.GetString("allowlist.source"),
		Path:   c.GetString("allowlist.path"),
	}
}
