package factory

import (
	"context"
	"fmt"

	"github.com/crinkl/receipt-agent/internal/adapters/gmail"
	"github.com/crinkl/receipt-agent/internal/adapters/mbox"
	"github.com/crinkl/receipt-agent/internal/config"
	"github.com/crinkl/receipt-agent/internal/core"
	"github.com/crinkl/receipt-agent/internal/utils"
	"go.uber.org/zap"
)

// MailboxFactory creates mailbox providers based on configuration
type MailboxFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	snippets *utils.Snippets
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger, snippets *utils.Snippets) *MailboxFactory {
	return &MailboxFactory{cfg: cfg, logger: logger, snippets: snippets}
}

// CreateMailboxProvider creates a mailbox provider based on the
// configuration. The Gmail provider may run an interactive OAuth flow on
// first use.
func (f *MailboxFactory) CreateMailboxProvider(ctx context.Context) (core.MailboxProvider, error) {
	source := f.cfg.GetString("mailbox.source")

	switch source {
	case "gmail":
		gmailCfg := f.cfg.GetGmail()
		if gmailCfg.ClientID == "" || gmailCfg.ClientSecret == "" {
			return nil, fmt.Errorf("gmail.client_id and gmail.client_secret are required")
		}
		tokenPath, err := defaultPath(gmailCfg.TokenPath, "gmail-token.json")
		if err != nil {
			return nil, err
		}
		return gmail.NewClient(ctx, gmailCfg.ClientID, gmailCfg.ClientSecret, tokenPath, f.logger)
	case "mbox":
		mboxCfg := f.cfg.GetMbox()
		if mboxCfg.Path == "" {
			return nil, fmt.Errorf("mailbox.mbox_path is required for the mbox source")
		}
		return mbox.NewMailbox(mboxCfg.Path, f.logger, f.snippets), nil
	default:
		return nil, fmt.Errorf("unsupported mailbox source: %s", source)
	}
}
