package history

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/autopost/internal/types"
)

// Store is the durable backing of an Index.
//
// Load returns every record in insertion order and fails with a
// *CorruptIndexError when a record cannot be parsed. Append must be atomic with
// respect to a process crash: after a crash the next Load sees the new record
// completely or not at all. Reset removes every record.
//
// Stores have no multi-writer concurrency control of their own; an Index
// serializes writes within a process, and callers sharing one store between
// processes must provide their own exclusion.
type Store interface {
	Load(ctx context.Context) ([]types.Entry, error)
	Append(ctx context.Context, entry types.Entry) error
	Reset(ctx context.Context) error
	Close() error
}

// Backend names a Store implementation
type Backend string

// Supported backends
const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// DefaultCorpus is the corpus name used when none is configured.
const DefaultCorpus = "default"

// Options selects and configures a Store.
type Options struct {
	Backend Backend `json:"backend,omitempty" validate:"omitempty,oneof=file sqlite postgres redis"`
	// Path is the JSON Lines file (file) or database file (sqlite)
	Path string `json:"path,omitempty"`
	// DSN is the PostgreSQL connection URL
	DSN string `json:"dsn,omitempty"`
	// RedisAddr, RedisPassword and RedisDB configure the Redis connection
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" validate:"gte=0"`
	// Corpus separates independent histories sharing one database or Redis instance
	Corpus string `json:"corpus,omitempty"`
}

func (o Options) corpus() string {
	if o.Corpus == "" {
		return DefaultCorpus
	}
	return o.Corpus
}

// OpenStore opens the Store named by opts.Backend. An empty backend means file.
func OpenStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file history store requires a path")
		}
		return NewFileStore(opts.Path)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite history store requires a path")
		}
		return NewSQLiteStore(ctx, opts.Path, opts.corpus())
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres history store requires a dsn")
		}
		return NewPostgresStore(ctx, opts.DSN, opts.corpus())
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis history store requires an address")
		}
		store, err := NewRedisStore(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}, opts.corpus())
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.RedisAddr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", opts.Backend)
	}
}
