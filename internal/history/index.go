package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/types"
)

// Index is the in-memory view of a Store, loaded once and kept in step with
// every successful Append or Reset. Entries are kept in acceptance order and
// are never edited.
//
// An Index owns its Store. Append and Reset are serialized by the Index;
// Entries returns a copy that callers may scan without holding any lock.
type Index struct {
	mu      sync.Mutex
	store   Store
	entries []types.Entry
	logger  *zap.Logger
}

// Open loads every entry from store. A *CorruptIndexError is returned as is
// so the caller can choose between aborting and resetting.
func Open(ctx context.Context, store Store, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorruptIndex) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	logger.Debug("history loaded", zap.Int("entries", len(entries)))
	return &Index{store: store, entries: entries, logger: logger}, nil
}

// Entries returns a snapshot of the entries in acceptance order.
func (ix *Index) Entries() []types.Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]types.Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Append durably persists entry and then adds it to the index. On failure a
// *StoreWriteError is returned and the in-memory index is unchanged.
func (ix *Index) Append(ctx context.Context, entry types.Entry) error {
	if entry.NormalizedText == "" {
		return &StoreWriteError{Op: "append", Message: "refusing to store an entry with empty normalized text"}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.store.Append(ctx, entry); err != nil {
		return &StoreWriteError{Op: "append", Message: "store rejected entry", Cause: err}
	}
	ix.entries = append(ix.entries, entry)

	ix.logger.Debug("history entry appended",
		zap.Int("entries", len(ix.entries)),
		zap.Stringer("fingerprint", entry.Fingerprint))
	return nil
}

// Reset durably clears every entry. It cannot be undone.
func (ix *Index) Reset(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.store.Reset(ctx); err != nil {
		return &StoreWriteError{Op: "reset", Message: "store could not be cleared", Cause: err}
	}
	removed := len(ix.entries)
	ix.entries = nil

	ix.logger.Info("history reset", zap.Int("removed", removed))
	return nil
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	return ix.store.Close()
}
