package memory

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly. Older
// databases are dropped and recreated on open.
const schemaVersion = 2

// ErrSchemaMismatch indicates the database was created by a newer version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is the SQLite-backed translation memory.
type Store struct {
	db   *sql.DB
	path string
}

// Key identifies one cached translation. Terminology names are reused
// across imports, so TerminologyDigest carries the glossary content.
type Key struct {
	Source            string
	Target            string
	Backend           string
	Terminology       []string
	TerminologyDigest string
	Text              string
}

func (k Key) terminology() string {
	if len(k.Terminology) == 0 {
		return ""
	}
	names := append([]string(nil), k.Terminology...)
	sort.Strings(names)
	return strings.Join(names, ",")
}

const keyClause = `source_lang = ? AND target_lang = ? AND backend = ? AND terminology = ?
		AND terminology_digest = ? AND source_text = ?`

func (k Key) args() []any {
	return []any{k.Source, k.Target, k.Backend, k.terminology(), k.TerminologyDigest, k.Text}
}

// Entry is a stored translation.
type Entry struct {
	Key
	Translation string
	RunID       string
}

// Stats summarises the stored translations.
type Stats struct {
	Path    string
	Entries int
	Hits    int
	Pairs   map[string]int // "source>target" -> entries
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("memory path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version < schemaVersion {
		return s.recreateSchema(ctx)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'pptx-translator memory clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// recreateSchema discards a database written by an older version. The
// memory is a cache, so its rows are not migrated.
func (s *Store) recreateSchema(ctx context.Context) error {
	for _, stmt := range []string{"DROP TABLE IF EXISTS translations", "DROP TABLE IF EXISTS schema_version"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop old schema: %w", err)
		}
	}
	return s.createSchema(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the stored translation for key and bumps its hit counter.
func (s *Store) Lookup(ctx context.Context, key Key) (string, bool, error) {
	var translated string
	err := s.db.QueryRowContext(ctx, `SELECT translated_text FROM translations
		WHERE `+keyClause, key.args()...,
	).Scan(&translated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup translation: %w", err)
	}
	if err := s.execWithRetry(ctx, `UPDATE translations SET hits = hits + 1
		WHERE `+keyClause, key.args()...); err != nil {
		return "", false, fmt.Errorf("record hit: %w", err)
	}
	return translated, true, nil
}

// Put stores or replaces a translation.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	err := s.execWithRetry(ctx, `INSERT INTO translations
		(source_lang, target_lang, backend, terminology, terminology_digest, source_text, translated_text, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_lang, target_lang, backend, terminology, terminology_digest, source_text) DO UPDATE SET
			translated_text = excluded.translated_text,
			run_id = excluded.run_id,
			updated_at = CURRENT_TIMESTAMP`,
		append(entry.args(), entry.Translation, entry.RunID)...)
	if err != nil {
		return fmt.Errorf("store translation: %w", err)
	}
	return nil
}

// Stats returns entry and hit counts grouped by language pair.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path, Pairs: make(map[string]int)}
	rows, err := s.db.QueryContext(ctx, `SELECT source_lang, target_lang, COUNT(1), COALESCE(SUM(hits), 0)
		FROM translations GROUP BY source_lang, target_lang`)
	if err != nil {
		return stats, fmt.Errorf("memory stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source, target string
		var count, hits int
		if err := rows.Scan(&source, &target, &count, &hits); err != nil {
			return stats, err
		}
		stats.Pairs[source+">"+target] = count
		stats.Entries += count
		stats.Hits += hits
	}
	return stats, rows.Err()
}

// Clear removes every stored translation and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM translations`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear memory: %w", err)
	}
	return removed, nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
