package whitelist

import (
	"context"
	"corp-bot/model"
	"corp-bot/utils/database"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists whitelist entries.
type Repository interface {
	List(ctx context.Context) ([]model.WhitelistEntry, error)
	Get(ctx context.Context, name string) (*model.WhitelistEntry, error)
	Insert(ctx context.Context, entry model.WhitelistEntry) error
	Delete(ctx context.Context, name string) error
	UpdateExpiry(ctx context.Context, name string, expiryDays int) error
	Count(ctx context.Context) (int, error)
	// InTx runs fn against a repository bound to one transaction, committing
	// only if fn returns nil.
	InTx(ctx context.Context, fn func(Repository) error) error
}

type sqlRepository struct {
	db *sqlx.DB
}

// NewSQLRepository returns a Repository backed by the state database.
func NewSQLRepository(db *sqlx.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) List(ctx context.Context) ([]model.WhitelistEntry, error) {
	return database.GetWhitelist(ctx, r.db)
}

func (r *sqlRepository) Get(ctx context.Context, name string) (*model.WhitelistEntry, error) {
	return database.GetWhitelistEntry(ctx, r.db, name)
}

func (r *sqlRepository) Insert(ctx context.Context, entry model.WhitelistEntry) error {
	return database.InsertWhitelistEntry(ctx, r.db, entry)
}

func (r *sqlRepository) Delete(ctx context.Context, name string) error {
	return database.DeleteWhitelistEntry(ctx, r.db, name)
}

func (r *sqlRepository) UpdateExpiry(ctx context.Context, name string, expiryDays int) error {
	return database.UpdateWhitelistExpiry(ctx, r.db, name, expiryDays)
}

func (r *sqlRepository) Count(ctx context.Context) (int, error) {
	return database.CountWhitelist(ctx, r.db)
}

func (r *sqlRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin whitelist transaction: %w", err)
	}
	if err := fn(&txRepository{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit whitelist transaction: %w", err)
	}
	return nil
}

type txRepository struct {
	tx *sqlx.Tx
}

func (r *txRepository) List(ctx context.Context) ([]model.WhitelistEntry, error) {
	return database.GetWhitelist(ctx, r.tx)
}

func (r *txRepository) Get(ctx context.Context, name string) (*model.WhitelistEntry, error) {
	return database.GetWhitelistEntry(ctx, r.tx, name)
}

func (r *txRepository) Insert(ctx context.Context, entry model.WhitelistEntry) error {
	return database.InsertWhitelistEntry(ctx, r.tx, entry)
}

func (r *txRepository) Delete(ctx context.Context, name string) error {
	return database.DeleteWhitelistEntry(ctx, r.tx, name)
}

func (r *txRepository) UpdateExpiry(ctx context.Context, name string, expiryDays int) error {
	return database.UpdateWhitelistExpiry(ctx, r.tx, name, expiryDays)
}

func (r *txRepository) Count(ctx context.Context) (int, error) {
	return database.CountWhitelist(ctx, r.tx)
}

func (r *txRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}
