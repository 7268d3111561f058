package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jonathan/autopost/internal/types"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS history_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		corpus TEXT NOT NULL,
		normalized_text TEXT NOT NULL,
		fingerprint INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_entries_corpus ON history_entries(corpus, seq)`,
}

// SQLiteStore keeps history in a SQLite table. Each append is a single INSERT,
// which SQLite commits atomically. Fingerprints are stored bit-for-bit as
// signed 64-bit integers.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	corpus string
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(ctx context.Context, path, corpus string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, path: path, corpus: corpus}, nil
}

// Load reads every entry of the corpus in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]types.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, normalized_text, fingerprint FROM history_entries WHERE corpus = ? ORDER BY seq`,
		s.corpus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []types.Entry{}
	for rows.Next() {
		var (
			seq  int
			text sql.NullString
			fp   sql.NullInt64
		)
		if err := rows.Scan(&seq, &text, &fp); err != nil {
			return nil, &CorruptIndexError{Source: s.path, Record: len(entries) + 1, Message: "unreadable row", Cause: err}
		}
		if !text.Valid || text.String == "" {
			return nil, &CorruptIndexError{Source: s.path, Record: seq, Message: "missing normalized_text"}
		}
		if !fp.Valid {
			return nil, &CorruptIndexError{Source: s.path, Record: seq, Message: "missing fingerprint"}
		}
		entries = append(entries, types.Entry{
			NormalizedText: text.String,
			Fingerprint:    types.Fingerprint(uint64(fp.Int64)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}

// Append inserts one entry.
func (s *SQLiteStore) Append(ctx context.Context, entry types.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_entries (corpus, normalized_text, fingerprint) VALUES (?, ?, ?)`,
		s.corpus, entry.NormalizedText, int64(entry.Fingerprint),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Reset deletes every entry of the corpus.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history_entries WHERE corpus = ?`, s.corpus); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
