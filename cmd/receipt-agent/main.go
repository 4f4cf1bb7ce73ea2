package main

import (
	"context"
	"fmt"
	"os"

	"github.com/crinkl/receipt-agent/internal/config"
	"github.com/crinkl/receipt-agent/internal/core"
	"github.com/crinkl/receipt-agent/internal/di"
	"github.com/crinkl/receipt-agent/internal/factory"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	flags *di.CLIFlags,
	cfg *config.Config,
	logger *zap.Logger,
	verifier core.ReceiptVerifier,
	allowlistSource core.AllowlistSource,
	ledgerStore core.LedgerStore,
	registry *core.Registry,
	mailboxFactory *factory.MailboxFactory,
) error {
	defer logger.Sync()
	ctx := context.Background()

	// Creating the Gmail provider runs the OAuth flow on first use, so this
	// doubles as the auth-setup step.
	mailbox, err := mailboxFactory.CreateMailboxProvider(ctx)
	if err != nil {
		return fmt.Errorf("connecting to mailbox: %w", err)
	}

	if flags.AuthOnly {
		logger.Info("Auth setup complete. Run without -auth to scan emails.")
		return nil
	}

	verifierCfg, err := cfg.GetVerifier()
	if err != nil {
		return err
	}
	if verifierCfg.APIKey == "" {
		return fmt.Errorf("verification service API key is required (set -api-key or RECEIPT_AGENT_VERIFIER_API_KEY)")
	}

	scanCfg := cfg.GetScan()
	if scanCfg.Preview {
		logger.Info("Preview mode: no receipts will be submitted")
	}

	ledger := core.LoadLedger(ctx, ledgerStore, logger)
	service := core.NewReceiptService(
		mailbox,
		verifier,
		allowlistSource,
		registry,
		ledger,
		logger,
		scanCfg.MaxAgeDays,
		scanCfg.MaxResults,
		scanCfg.Preview,
	)

	summary, runErr := service.Run(ctx)

	if closer, ok := ledgerStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close ledger store", zap.Error(err))
		}
	}

	if summary != nil {
		fmt.Printf("\n--- Summary ---\n")
		fmt.Printf("Submitted: %d\n", summary.Submitted())
		fmt.Printf("Skipped: %d (already submitted or non-receipt)\n", summary.Skipped())
		if summary.Errors() > 0 {
			fmt.Printf("Errors: %d\n", summary.Errors())
		}
		fmt.Printf("\n")
	}

	return runErr
}
