package ledgerstore

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const ledgerBucket = "ledger"

// BoltStore persists the ledger in an embedded bbolt database.
type BoltStore struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewBoltStore opens (and if needed initializes) a bbolt-backed ledger.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger bucket: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Load reads all finalized message ids.
func (s *BoltStore) Load(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		s.logger.Warn("Failed to read ledger bucket, treating as empty", zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

// Save recreates the bucket with the given ids in one write transaction.
func (s *BoltStore) Save(ctx context.Context, ids []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(ledgerBucket)); err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("clearing ledger bucket: %w", err)
		}
		bucket, err := tx.CreateBucket([]byte(ledgerBucket))
		if err != nil {
			return fmt.Errorf("recreating ledger bucket: %w", err)
		}
		for _, id := range ids {
			if err := bucket.Put([]byte(id), nil); err != nil {
				return fmt.Errorf("writing ledger entry: %w", err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
