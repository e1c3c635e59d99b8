package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in SQLite's user_version pragma. A database written
// with another version is refused rather than migrated.
const ledgerVersion = 1

// ErrSchemaMismatch is returned by Open for a ledger created by an
// incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// migrate creates the tables of a fresh database and checks the version of an
// existing one.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}
	switch version {
	case ledgerVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s has version %d, want %d (remove it to start a new ledger)",
			ErrSchemaMismatch, s.path, version, ledgerVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create ledger tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ledgerVersion)); err != nil {
		return fmt.Errorf("set ledger version: %w", err)
	}
	return tx.Commit()
}
