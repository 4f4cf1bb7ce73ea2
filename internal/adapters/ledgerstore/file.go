package ledgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists the ledger as a JSON array of message ids at a fixed
// path. This is the default backend.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed ledger store.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the persisted ids. A missing file is a normal first run and a
// malformed file degrades to "process everything"; neither is an error.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Warn("Failed to read ledger file, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("Ledger file is malformed, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

// Save atomically replaces the ledger file: the new content is written to a
// temp file in the same directory and renamed over the old one, so a partial
// write can never mix old and new entries.
func (s *FileStore) Save(ctx context.Context, ids []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("creating temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp ledger file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting ledger permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing ledger file: %w", err)
	}
	return nil
}
