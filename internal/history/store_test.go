package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autopost/internal/types"
)

var sampleEntries = []types.Entry{
	{NormalizedText: "ai technology trends", Fingerprint: 0x0123456789abcdef},
	{NormalizedText: "今日は ai の話をします", Fingerprint: 0xfedcba9876543210},
	{NormalizedText: "go 1 24 release notes", Fingerprint: 0x8000000000000001},
}

// runStoreContract checks the behavior every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("empty store loads nothing", func(t *testing.T) {
		store := newStore(t)
		entries, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("appends load in insertion order", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		for _, entry := range sampleEntries {
			require.NoError(t, store.Append(ctx, entry))
		}

		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleEntries, entries)
	})

	t.Run("reset clears and append works afterwards", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		for _, entry := range sampleEntries {
			require.NoError(t, store.Append(ctx, entry))
		}

		require.NoError(t, store.Reset(ctx))
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, store.Append(ctx, sampleEntries[0]))
		entries, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleEntries[:1], entries)
	})

	t.Run("reset of empty store succeeds", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Reset(context.Background()))
	})
}

func TestFileStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "data", "history.jsonl"))
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "history.db"), DefaultCorpus)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		mr := miniredis.RunT(t)
		store, err := NewRedisStore(&redis.Options{Addr: mr.Addr()}, DefaultCorpus)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestSQLiteStore_CorporaAreIndependent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	alpha, err := NewSQLiteStore(ctx, path, "alpha")
	require.NoError(t, err)
	defer func() { _ = alpha.Close() }()
	require.NoError(t, alpha.Append(ctx, sampleEntries[0]))

	beta, err := NewSQLiteStore(ctx, path, "beta")
	require.NoError(t, err)
	defer func() { _ = beta.Close() }()

	entries, err := beta.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, beta.Reset(ctx))
	entries, err = alpha.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(ctx, path, DefaultCorpus)
	require.NoError(t, err)
	for _, entry := range sampleEntries {
		require.NoError(t, store.Append(ctx, entry))
	}
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path, DefaultCorpus)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries, entries)
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(&redis.Options{Addr: mr.Addr()}, "posts")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, sampleEntries[0]))
	_, err = mr.RPush(HistoryKey("posts"), "not json")
	require.NoError(t, err)

	_, err = store.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)

	var corruptErr *CorruptIndexError
	require.ErrorAs(t, err, &corruptErr)
	assert.Equal(t, 2, corruptErr.Record)
	assert.Equal(t, "autopost:posts:history", corruptErr.Source)
}

func TestRedisStore_EmptyCorpusRejected(t *testing.T) {
	_, err := NewRedisStore(&redis.Options{Addr: "localhost:0"}, "")
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		opts    Options
		wantErr string
		check   func(t *testing.T, store Store)
	}{
		{
			name: "default backend is file",
			opts: Options{Path: filepath.Join(dir, "history.jsonl")},
			check: func(t *testing.T, store Store) {
				assert.IsType(t, &FileStore{}, store)
			},
		},
		{
			name: "sqlite",
			opts: Options{Backend: BackendSQLite, Path: filepath.Join(dir, "history.db")},
			check: func(t *testing.T, store Store) {
				assert.IsType(t, &SQLiteStore{}, store)
			},
		},
		{
			name: "redis",
			opts: Options{Backend: BackendRedis, RedisAddr: mr.Addr(), Corpus: "tweets"},
			check: func(t *testing.T, store Store) {
				assert.IsType(t, &RedisStore{}, store)
			},
		},
		{name: "file without path", opts: Options{Backend: BackendFile}, wantErr: "requires a path"},
		{name: "sqlite without path", opts: Options{Backend: BackendSQLite}, wantErr: "requires a path"},
		{name: "postgres without dsn", opts: Options{Backend: BackendPostgres}, wantErr: "requires a dsn"},
		{name: "redis without address", opts: Options{Backend: BackendRedis}, wantErr: "requires an address"},
		{name: "unknown backend", opts: Options{Backend: "etcd"}, wantErr: "unknown history backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenStore(ctx, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			tt.check(t, store)
		})
	}
}
