// Package store keeps an option catalog in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mgomes/flashlab/flashcode"
	_ "modernc.org/sqlite"
)

// ErrEmpty indicates the store holds no catalog yet. It wraps
// flashcode.ErrCatalogUnavailable.
var ErrEmpty = fmt.Errorf("%w: store is empty", flashcode.ErrCatalogUnavailable)

const fingerprintKey = "fingerprint"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS options (
		name TEXT PRIMARY KEY,
		byte_offset INTEGER NOT NULL,
		bit_offset INTEGER NOT NULL,
		bit_size INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// Store is a SQLite-backed catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the stored catalog with c.
func (s *Store) Save(ctx context.Context, c *flashcode.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM options"); err != nil {
		return fmt.Errorf("clearing options: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO options (name, byte_offset, bit_offset, bit_size) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range c.Options() {
		if _, err := stmt.ExecContext(ctx, o.Name, o.ByteOffset, o.BitOffset, o.BitSize); err != nil {
			return fmt.Errorf("saving option %s: %w", o.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		fingerprintKey, strconv.FormatUint(c.Fingerprint(), 16))
	if err != nil {
		return fmt.Errorf("saving fingerprint: %w", err)
	}

	return tx.Commit()
}

// Load reads the stored catalog. A store that was never saved to fails with
// ErrEmpty; a saved empty catalog loads as an empty catalog.
func (s *Store) Load(ctx context.Context) (*flashcode.Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, byte_offset, bit_offset, bit_size FROM options")
	if err != nil {
		return nil, fmt.Errorf("%w: querying options: %w", flashcode.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var opts []flashcode.Option
	for rows.Next() {
		var o flashcode.Option
		if err := rows.Scan(&o.Name, &o.ByteOffset, &o.BitOffset, &o.BitSize); err != nil {
			return nil, fmt.Errorf("%w: %w", flashcode.ErrCatalogMalformed, err)
		}
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", flashcode.ErrCatalogUnavailable, err)
	}
	if len(opts) == 0 {
		if _, err := s.Fingerprint(ctx); err != nil {
			return nil, err
		}
	}
	return flashcode.NewCatalog(opts)
}

// Fingerprint returns the fingerprint recorded by the last Save.
func (s *Store) Fingerprint(ctx context.Context) (uint64, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", fingerprintKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEmpty
		}
		return 0, fmt.Errorf("querying fingerprint: %w", err)
	}
	fp, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad fingerprint %q", flashcode.ErrCatalogMalformed, value)
	}
	return fp, nil
}

// LoadFile opens the database at path, loads its catalog and closes it.
func LoadFile(ctx context.Context, path string) (*flashcode.Catalog, error) {
	s, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", flashcode.ErrCatalogUnavailable, err)
	}
	defer s.Close()
	return s.Load(ctx)
}

// SaveFile opens or creates the database at path and saves c into it.
func SaveFile(ctx context.Context, path string, c *flashcode.Catalog) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, c); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}
