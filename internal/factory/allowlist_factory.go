package factory

import (
	"fmt"

	"github.com/crinkl/receipt-agent/internal/allowlist"
	"github.com/crinkl/receipt-agent/internal/config"
	"github.com/crinkl/receipt-agent/internal/core"
	"go.uber.org/zap"
)

// AllowlistFactory creates allowlist sources based on configuration
type AllowlistFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAllowlistFactory creates a new allowlist factory
func NewAllowlistFactory(cfg *config.Config, logger *zap.Logger) *AllowlistFactory {
	return &AllowlistFactory{cfg: cfg, logger: logger}
}

// CreateAllowlistSource creates an allowlist source based on the
// configuration.
func (f *AllowlistFactory) CreateAllowlistSource(verifier core.ReceiptVerifier) (core.AllowlistSource, error) {
	allowlistCfg := f.cfg.GetAllowlist()

	switch allowlistCfg.Source {
	case "remote":
		return allowlist.NewRemoteSource(verifier, f.logger), nil
	case "file":
		return allowlist.NewFileSource(allowlistCfg.Path, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported allowlist source: %s", allowlistCfg.Source)
	}
}
