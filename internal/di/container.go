package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/crinkl/receipt-agent/internal/adapters/verifier"
	"github.com/crinkl/receipt-agent/internal/config"
	"github.com/crinkl/receipt-agent/internal/core"
	"github.com/crinkl/receipt-agent/internal/factory"
	"github.com/crinkl/receipt-agent/internal/logging"
	"github.com/crinkl/receipt-agent/internal/utils"
)

// CLIFlags contains all command line flags for the agent
type CLIFlags struct {
	// Run modes
	AuthOnly bool
	Preview  bool

	// Verification service flags
	APIURL string
	APIKey string

	// Mailbox flags
	MailboxSource string
	MboxPath      string
	GmailClientID string
	GmailSecret   string

	// Scan flags
	MaxAgeDays int
	MaxResults int64

	// Ledger flags
	LedgerType string
	LedgerPath string

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Run modes
	flag.BoolVar(&flags.AuthOnly, "auth", false, "Set up mailbox authorization only, skip scanning")
	flag.BoolVar(&flags.Preview, "scan", false, "Preview run: classify and log but never submit")

	// Verification service flags
	flag.StringVar(&flags.APIURL, "api-url", "https://api.crinkl.xyz", "Verification service base URL")
	flag.StringVar(&flags.APIKey, "api-key", "", "Verification service API key")

	// Mailbox flags
	flag.StringVar(&flags.MailboxSource, "mailbox", "gmail", "Mailbox source (gmail, mbox)")
	flag.StringVar(&flags.MboxPath, "mbox-path", "", "Path to an mbox file for the mbox source")
	flag.StringVar(&flags.GmailClientID, "gmail-client-id", "", "Google OAuth client ID")
	flag.StringVar(&flags.GmailSecret, "gmail-client-secret", "", "Google OAuth client secret")

	// Scan flags
	flag.IntVar(&flags.MaxAgeDays, "max-age-days", 14, "How many days back to search")
	flag.Int64Var(&flags.MaxResults, "max-results", 50, "Maximum candidate emails per run")

	// Ledger flags
	flag.StringVar(&flags.LedgerType, "ledger", "file", "Ledger backend (file, sqlite, mysql, bolt, memory)")
	flag.StringVar(&flags.LedgerPath, "ledger-path", "", "Path for the file ledger backend")

	// Output flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildContainer creates and configures a dependency injection container for
// the agent
func BuildContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			if flags.Preview {
				cfg.GetViper().Set("scan.preview", true)
			}
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register logger. Config-file runs get the config-driven logger; flag
	// runs get the console logger.
	if err := container.Provide(func(flags *CLIFlags, cfg *config.Config) (*zap.Logger, error) {
		if flags.ConfigFile != "" {
			logger, err := logging.InitLogger(cfg)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file",
				zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return logger, nil
		}
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register snippet helper
	if err := container.Provide(utils.NewSnippets); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLedgerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailboxFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAllowlistFactory); err != nil {
		return nil, err
	}

	// Register verification service client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.ReceiptVerifier, error) {
		verifierCfg, err := cfg.GetVerifier()
		if err != nil {
			return nil, err
		}
		return verifier.NewClient(verifierCfg.APIURL, verifierCfg.APIKey, verifierCfg.Timeout, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register allowlist source
	if err := container.Provide(func(f *factory.AllowlistFactory, v core.ReceiptVerifier) (core.AllowlistSource, error) {
		return f.CreateAllowlistSource(v)
	}); err != nil {
		return nil, err
	}

	// Register ledger store
	if err := container.Provide(func(f *factory.LedgerFactory) (core.LedgerStore, error) {
		return f.CreateLedgerStore()
	}); err != nil {
		return nil, err
	}

	// Register vendor registry. Vendor-specific parsers get registered here
	// as they land; the generic fallback covers everything else.
	if err := container.Provide(func() *core.Registry {
		return core.NewRegistry()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags.
// Credentials fall back to RECEIPT_AGENT_* environment variables when their
// flags are not set.
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()
	v.AutomaticEnv()
	v.SetEnvPrefix("RECEIPT_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Verification service
	v.Set("verifier.api_url", flags.APIURL)
	if flags.APIKey != "" {
		v.Set("verifier.api_key", flags.APIKey)
	}

	// Mailbox
	v.Set("mailbox.source", flags.MailboxSource)
	v.Set("mailbox.mbox_path", flags.MboxPath)
	if flags.GmailClientID != "" {
		v.Set("gmail.client_id", flags.GmailClientID)
	}
	if flags.GmailSecret != "" {
		v.Set("gmail.client_secret", flags.GmailSecret)
	}

	// Scan
	v.Set("scan.max_age_days", flags.MaxAgeDays)
	v.Set("scan.max_results", flags.MaxResults)
	v.Set("scan.preview", flags.Preview)

	// Ledger
	v.Set("ledger.type", flags.LedgerType)
	v.Set("ledger.path", flags.LedgerPath)

	return config.NewFromViper(v)
}
