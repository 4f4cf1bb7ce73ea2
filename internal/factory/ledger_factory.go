package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crinkl/receipt-agent/internal/adapters/ledgerstore"
	"github.com/crinkl/receipt-agent/internal/config"
	"github.com/crinkl/receipt-agent/internal/core"
	"go.uber.org/zap"
)

// LedgerFactory creates ledger stores based on configuration
type LedgerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLedgerFactory creates a new ledger factory
func NewLedgerFactory(cfg *config.Config, logger *zap.Logger) *LedgerFactory {
	return &LedgerFactory{cfg: cfg, logger: logger}
}

// CreateLedgerStore creates a ledger store based on the configuration.
// Unset paths default to files under ~/.receipt-agent.
func (f *LedgerFactory) CreateLedgerStore() (core.LedgerStore, error) {
	ledgerCfg := f.cfg.GetLedger()

	switch ledgerCfg.Type {
	case "file":
		path, err := defaultPath(ledgerCfg.Path, "ledger.json")
		if err != nil {
			return nil, err
		}
		return ledgerstore.NewFileStore(path, f.logger), nil
	case "sqlite":
		path, err := defaultPath(ledgerCfg.SQLitePath, "ledger.db")
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
		return ledgerstore.NewSQLiteStore(path, f.logger)
	case "mysql":
		return ledgerstore.NewMySQLStore(ledgerCfg.MySQLDSN, f.logger)
	case "bolt":
		path, err := defaultPath(ledgerCfg.BoltPath, "ledger.bolt")
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
		return ledgerstore.NewBoltStore(path, f.logger)
	case "memory":
		return ledgerstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerCfg.Type)
	}
}

// defaultPath resolves an empty configured path to ~/.receipt-agent/<name>.
func defaultPath(configured, name string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".receipt-agent", name), nil
}
