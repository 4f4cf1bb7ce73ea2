package ledgerstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore persists the ledger in a MySQL database, for deployments where
// several machines scan mailboxes against one shared ledger.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore opens (and if needed initializes) a MySQL-backed ledger.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			message_id VARCHAR(255) PRIMARY KEY
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Load reads all finalized message ids. Query failures degrade to an empty
// ledger rather than failing the run.
func (s *MySQLStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message_id FROM ledger`)
	if err != nil {
		s.logger.Warn("Failed to query ledger table, treating as empty", zap.Error(err))
		return nil, nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Warn("Failed to scan ledger row, treating as empty", zap.Error(err))
			return nil, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("Failed to read ledger rows, treating as empty", zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

// Save replaces the whole table in one transaction.
func (s *MySQLStore) Save(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning ledger transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger`); err != nil {
		return fmt.Errorf("clearing ledger table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger (message_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("inserting ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
