package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/autopost/internal/types"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS history_entries (
		seq BIGSERIAL PRIMARY KEY,
		corpus TEXT NOT NULL,
		normalized_text TEXT NOT NULL,
		fingerprint BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_entries_corpus ON history_entries(corpus, seq)`,
}

// PostgresStore keeps history in a PostgreSQL table shared by any number of
// corpora. Fingerprints are stored bit-for-bit as BIGINT.
type PostgresStore struct {
	pool   *pgxpool.Pool
	corpus string
}

// NewPostgresStore connects to databaseURL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL, corpus string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool, corpus: corpus}, nil
}

// Load reads every entry of the corpus in insertion order.
func (s *PostgresStore) Load(ctx context.Context) ([]types.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT seq, normalized_text, fingerprint FROM history_entries WHERE corpus = $1 ORDER BY seq`,
		s.corpus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []types.Entry{}
	for rows.Next() {
		var (
			seq  int64
			text string
			fp   int64
		)
		if err := rows.Scan(&seq, &text, &fp); err != nil {
			return nil, &CorruptIndexError{Source: "history_entries", Record: len(entries) + 1, Message: "unreadable row", Cause: err}
		}
		if text == "" {
			return nil, &CorruptIndexError{Source: "history_entries", Record: int(seq), Message: "missing normalized_text"}
		}
		entries = append(entries, types.Entry{NormalizedText: text, Fingerprint: types.Fingerprint(uint64(fp))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}

// Append inserts one entry inside a transaction.
func (s *PostgresStore) Append(ctx context.Context, entry types.Entry) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO history_entries (corpus, normalized_text, fingerprint) VALUES ($1, $2, $3)`,
			s.corpus, entry.NormalizedText, int64(entry.Fingerprint),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Reset deletes every entry of the corpus.
func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM history_entries WHERE corpus = $1`, s.corpus); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
