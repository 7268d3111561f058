package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/autopost/internal/types"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	require.NoError(t, err)
	return store
}

func TestFileStore_WireFormat(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, store.Append(context.Background(), types.Entry{
		NormalizedText: "ai technology trends",
		Fingerprint:    0x00000000000000ff,
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, `{"normalized_text":"ai technology trends","fingerprint":"00000000000000ff"}`+"\n", string(data))
}

func TestFileStore_CrashBeforeCommitKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	require.NoError(t, store.Append(ctx, sampleEntries[0]))

	crash := errors.New("simulated crash")
	var tmpSeen string
	store.beforeCommit = func(tmpPath string) error {
		tmpSeen = tmpPath
		return crash
	}

	err := store.Append(ctx, sampleEntries[1])
	require.ErrorIs(t, err, crash)
	assert.NotEmpty(t, tmpSeen)

	// A fresh store sees the old file only, with nothing half written.
	reopened, err := NewFileStore(store.Path())
	require.NoError(t, err)
	entries, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries[:1], entries)
}

func TestFileStore_CrashAfterCommitKeepsWholeEntry(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	require.NoError(t, store.Append(ctx, sampleEntries[0]))
	require.NoError(t, store.Append(ctx, sampleEntries[1]))

	// The process dies before telling anyone; a new process reloads.
	reopened, err := NewFileStore(store.Path())
	require.NoError(t, err)
	entries, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries[:2], entries)
}

func TestFileStore_IgnoresLeftoverTempFiles(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	require.NoError(t, store.Append(ctx, sampleEntries[0]))

	torn := filepath.Join(filepath.Dir(store.Path()), ".history-123456.tmp")
	require.NoError(t, os.WriteFile(torn, []byte(`{"normalized_text":"half wri`), 0o644))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries[:1], entries)
}

func TestFileStore_CorruptFileSurfaces(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantRecord int
		wantMsg    string
	}{
		{
			name:       "torn last line",
			content:    `{"normalized_text":"a b c","fingerprint":"0000000000000001"}` + "\n" + `{"normalized_text":"ab`,
			wantRecord: 2,
			wantMsg:    "invalid JSON record",
		},
		{
			name:       "missing fingerprint",
			content:    `{"normalized_text":"a b c"}` + "\n",
			wantRecord: 1,
			wantMsg:    "missing fingerprint",
		},
		{
			name:       "missing text",
			content:    `{"fingerprint":"0000000000000001"}` + "\n",
			wantRecord: 1,
			wantMsg:    "missing normalized_text",
		},
		{
			name:       "bad fingerprint",
			content:    `{"normalized_text":"a","fingerprint":"xyz"}` + "\n",
			wantRecord: 1,
			wantMsg:    "invalid JSON record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestFileStore(t)
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0o644))

			entries, err := store.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, entries)
			assert.ErrorIs(t, err, ErrCorruptIndex)

			var corruptErr *CorruptIndexError
			require.ErrorAs(t, err, &corruptErr)
			assert.Equal(t, tt.wantRecord, corruptErr.Record)
			assert.Contains(t, corruptErr.Error(), tt.wantMsg)
		})
	}
}

func TestFileStore_BlankLinesAndMissingNewline(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	content := "\n" + `{"normalized_text":"first","fingerprint":"0000000000000001"}` + "\n\n" +
		`{"normalized_text":"second","fingerprint":"0000000000000002"}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	require.NoError(t, store.Append(ctx, types.Entry{NormalizedText: "third", Fingerprint: 3}))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].NormalizedText)
	assert.Equal(t, "second", entries[1].NormalizedText)
	assert.Equal(t, types.Entry{NormalizedText: "third", Fingerprint: 3}, entries[2])
}

func TestFileStore_NoTempFilesAfterWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	for _, entry := range sampleEntries {
		require.NoError(t, store.Append(ctx, entry))
	}
	require.NoError(t, store.Reset(ctx))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(store.Path()), tempPattern))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_CancelledContext(t *testing.T) {
	store := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Append(ctx, sampleEntries[0])
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
