package database

import (
	"context"
	"corp-bot/model"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrWhitelistEntryNotFound is returned when no whitelist row matches a name.
var ErrWhitelistEntryNotFound = errors.New("whitelist entry not found")

// InitStateDB opens the bot's own state database and ensures its tables exist.
func InitStateDB(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to state database: %w", err)
	}
	// A single connection serializes writers and keeps sqlite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	schema := `
    CREATE TABLE IF NOT EXISTS activity_whitelist (
        name TEXT NOT NULL PRIMARY KEY COLLATE NOCASE,
        description TEXT NOT NULL DEFAULT '',
        expiry_days INTEGER NOT NULL,
        added_at DATETIME NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create activity_whitelist table: %w", err)
	}

	return db, nil
}

// GetWhitelist returns every whitelist entry ordered by name.
func GetWhitelist(ctx context.Context, q sqlx.QueryerContext) ([]model.WhitelistEntry, error) {
	var entries []model.WhitelistEntry
	query := "SELECT name, description, expiry_days, added_at FROM activity_whitelist ORDER BY name COLLATE NOCASE"
	if err := sqlx.SelectContext(ctx, q, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to get whitelist: %w", err)
	}
	return entries, nil
}

// GetWhitelistEntry returns the entry for name, ignoring case.
func GetWhitelistEntry(ctx context.Context, q sqlx.QueryerContext, name string) (*model.WhitelistEntry, error) {
	var entry model.WhitelistEntry
	query := "SELECT name, description, expiry_days, added_at FROM activity_whitelist WHERE name = ?"
	if err := sqlx.GetContext(ctx, q, &entry, query, name); err != nil {
		return nil, fmt.Errorf("failed to get whitelist entry %s: %w", name, err)
	}
	return &entry, nil
}

// InsertWhitelistEntry adds a new entry. Names are unique ignoring case.
func InsertWhitelistEntry(ctx context.Context, e sqlx.ExtContext, entry model.WhitelistEntry) error {
	query := `INSERT INTO activity_whitelist (name, description, expiry_days, added_at)
              VALUES (:name, :description, :expiry_days, :added_at)`

	if _, err := sqlx.NamedExecContext(ctx, e, query, entry); err != nil {
		return fmt.Errorf("failed to insert whitelist entry %s: %w", entry.Name, err)
	}
	return nil
}

// DeleteWhitelistEntry removes the entry for name, ignoring case.
func DeleteWhitelistEntry(ctx context.Context, e sqlx.ExecerContext, name string) error {
	result, err := e.ExecContext(ctx, "DELETE FROM activity_whitelist WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete whitelist entry %s: %w", name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for whitelist entry %s: %w", name, err)
	}
	if rowsAffected == 0 {
		return ErrWhitelistEntryNotFound
	}
	return nil
}

// UpdateWhitelistExpiry sets the remaining days of an entry.
func UpdateWhitelistExpiry(ctx context.Context, e sqlx.ExecerContext, name string, expiryDays int) error {
	result, err := e.ExecContext(ctx, "UPDATE activity_whitelist SET expiry_days = ? WHERE name = ?", expiryDays, name)
	if err != nil {
		return fmt.Errorf("failed to update whitelist entry %s: %w", name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for whitelist entry %s: %w", name, err)
	}
	if rowsAffected == 0 {
		return ErrWhitelistEntryNotFound
	}
	return nil
}

// CountWhitelist returns the number of stored entries.
func CountWhitelist(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM activity_whitelist"); err != nil {
		return 0, fmt.Errorf("failed to count whitelist entries: %w", err)
	}
	return count, nil
}
