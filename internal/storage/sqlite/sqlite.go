// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It
// creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; serializing through a single
	// connection avoids SQLITE_BUSY under concurrent service calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// replaceEdges deletes the group's stored edge set and writes the given
// one, inside the caller's transaction.
func replaceEdges(ctx context.Context, tx *sql.Tx, groupID string, edges []models.SettlementEdge) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlement_edges WHERE group_id = ?", groupID,
	); err != nil {
		return fmt.Errorf("failed to clear settlement edges: %w", err)
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settlement_edges (group_id, debtor_id, creditor_id, amount) VALUES (?, ?, ?, ?)",
			groupID, e.DebtorID, e.CreditorID, e.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert settlement edge: %w", err)
		}
	}
	return nil
}

// ListEdges returns the group's settlement edges ordered by debtor then
// creditor.
func (s *SQLiteStore) ListEdges(ctx context.Context, groupID string) ([]models.SettlementEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, debtor_id, creditor_id, amount
		 FROM settlement_edges WHERE group_id = ?
		 ORDER BY debtor_id, creditor_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement edges: %w", err)
	}
	defer rows.Close()

	var edges []models.SettlementEdge
	for rows.Next() {
		var e models.SettlementEdge
		if err := rows.Scan(&e.GroupID, &e.DebtorID, &e.CreditorID, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement edges: %w", err)
	}
	return edges, nil
}
