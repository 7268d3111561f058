package history

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/autopost/internal/types"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
	// maxRecordBytes bounds a single JSON Lines record
	maxRecordBytes = 1 << 20
	tempPattern    = ".history-*.tmp"
)

// FileStore keeps history in a JSON Lines file, one record per line:
//
//	{"normalized_text":"ai technology trends","fingerprint":"9f2c0a4e11d3b708"}
//
// Every write replaces the whole file through a synced temp file in the same
// directory followed by a rename, so a crash leaves either the previous file or
// the new one and never a torn record. A missing file is an empty history.
type FileStore struct {
	path string

	// beforeCommit runs after the temp file is synced and before the rename.
	beforeCommit func(tmpPath string) error
}

// NewFileStore returns a FileStore at path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the history file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every record. Blank lines are skipped.
func (s *FileStore) Load(ctx context.Context) ([]types.Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open history file %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	entries := []types.Entry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		entry, err := decodeRecord(line, s.path, lineNum)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, &CorruptIndexError{Source: s.path, Record: lineNum + 1, Message: "unreadable record", Cause: err}
	}
	return entries, nil
}

// Append adds one record to the end of the file.
func (s *FileStore) Append(ctx context.Context, entry types.Entry) error {
	line, err := encodeRecord(entry)
	if err != nil {
		return err
	}

	current, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read history file %s: %w", s.path, err)
	}

	next := make([]byte, 0, len(current)+len(line)+2)
	next = append(next, current...)
	if len(next) > 0 && next[len(next)-1] != '\n' {
		next = append(next, '\n')
	}
	next = append(next, line...)
	next = append(next, '\n')

	return s.replace(ctx, next)
}

// Reset replaces the file with an empty one.
func (s *FileStore) Reset(ctx context.Context) error {
	return s.replace(ctx, nil)
}

// Close is a no-op; the file is only open during calls.
func (s *FileStore) Close() error {
	return nil
}

// replace atomically swaps the history file for data.
func (s *FileStore) replace(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(tmpPath); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	// Best effort: persist the rename itself.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return d.Sync()
}
