// Package store provides a SQLite-backed cache of parsed transaction files.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed transaction caching keyed by source file.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state of a source file.
type FileInfo struct {
	MtimeNs     int64
	SizeBytes   int64
	ParseErrors int
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, parse_errors FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.ParseErrors); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces everything cached for path with txs and records the
// file's current mtime and size.
func (c *Cache) SaveFile(path string, txs []model.Transaction, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, parse_errors, parsed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			parse_errors = excluded.parse_errors,
			parsed_at = excluded.parsed_at`,
		path, fi.MtimeNs, fi.SizeBytes, fi.ParseErrors, now)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions
		(file_path, row_index, tx_id, date, description, amount, type, is_planned, category, periodicity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range txs {
		planned := 0
		if t.IsPlanned {
			planned = 1
		}
		_, err = stmt.Exec(path, i, t.ID, t.Date.String(), t.Description, t.Amount.String(),
			string(t.Type), planned, t.Category, string(t.Periodicity))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAllTransactions reads every cached transaction in file order.
func (c *Cache) LoadAllTransactions() ([]model.Transaction, error) {
	rows, err := c.db.Query(`SELECT
		file_path, tx_id, date, description, amount, type, is_planned, category, periodicity
		FROM transactions ORDER BY file_path, row_index`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var (
			t                 model.Transaction
			date, amount, typ string
			period            string
			desc, category    sql.NullString
			planned           int
		)
		if err := rows.Scan(&t.FilePath, &t.ID, &date, &desc, &amount, &typ, &planned, &category, &period); err != nil {
			return nil, err
		}
		if t.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("cached date %q: %w", date, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("cached amount %q: %w", amount, err)
		}
		t.Type = model.TxType(typ)
		t.IsPlanned = planned != 0
		t.Description = desc.String
		t.Category = category.String
		t.Periodicity = model.Periodicity(period)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteFile removes a tracked file and its transactions.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of cached transactions.
func (c *Cache) TransactionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}
