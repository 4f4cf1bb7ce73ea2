package allowlist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/crinkl/receipt-agent/internal/core"
	"go.uber.org/zap"
)

// RemoteSource reads the vendor allowlist from the verification service, the
// default behavior: the server decides which vendors are worth scanning for.
type RemoteSource struct {
	verifier core.ReceiptVerifier
	logger   *zap.Logger
}

// NewRemoteSource creates a server-backed allowlist source.
func NewRemoteSource(verifier core.ReceiptVerifier, logger *zap.Logger) *RemoteSource {
	return &RemoteSource{verifier: verifier, logger: logger}
}

// Vendors fetches the current server-side allowlist.
func (s *RemoteSource) Vendors(ctx context.Context) ([]core.Vendor, error) {
	vendors, err := s.verifier.AllowedVendors(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vendors))
	for _, v := range vendors {
		names = append(names, v.Name)
	}
	s.logger.Debug("Fetched remote allowlist", zap.Strings("vendors", names))
	return vendors, nil
}

// allowlistFile is the versioned on-disk allowlist format.
type allowlistFile struct {
	Version int    `json:"version"`
	Updated string `json:"updated"`
	Vendors []struct {
		Domain   string `json:"domain"`
		Name     string `json:"name"`
		Category string `json:"category"`
	} `json:"vendors"`
}

// FileSource reads a versioned allowlist JSON file shipped alongside the
// agent, for running without a round trip to the service.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a file-backed allowlist source.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Vendors loads and validates the allowlist file. Records without a domain
// are dropped; domains are lowercased.
func (s *FileSource) Vendors(ctx context.Context) ([]core.Vendor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading allowlist file: %w", err)
	}

	var file allowlistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing allowlist file %s: %w", s.path, err)
	}

	vendors := make([]core.Vendor, 0, len(file.Vendors))
	for _, v := range file.Vendors {
		domain := strings.ToLower(strings.TrimSpace(v.Domain))
		if domain == "" {
			s.logger.Warn("Dropping allowlist record without a domain",
				zap.String("name", v.Name))
			continue
		}
		vendors = append(vendors, core.Vendor{
			Domain:   domain,
			Name:     v.Name,
			Category: v.Category,
		})
	}

	s.logger.Debug("Loaded allowlist file",
		zap.String("path", s.path),
		zap.Int("version", file.Version),
		zap.Int("vendors", len(vendors)))
	return vendors, nil
}
