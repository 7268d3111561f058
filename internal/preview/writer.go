package preview

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/autopost/internal/schemas"
)

// Output file names inside the output directory
const (
	MarkdownFile = "tweets_preview.md"
	PayloadFile  = "tweets_payload.json"
)

// Writer writes preview files into one directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer for dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &OutputError{Path: dir, Message: "failed to create output directory", Cause: err}
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// MarkdownPath returns the preview file path.
func (w *Writer) MarkdownPath() string {
	return filepath.Join(w.dir, MarkdownFile)
}

// PayloadPath returns the payload file path.
func (w *Writer) PayloadPath() string {
	return filepath.Join(w.dir, PayloadFile)
}

// AppendMarkdown appends one preview block for an accepted post.
func (w *Writer) AppendMarkdown(text string, meta Metadata) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n\n## Tweet Preview (%s)\n\n", w.now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Content:**\n%s\n\n", strings.ReplaceAll(text, "\n", " ")))
	sb.WriteString("**Metadata:**\n")
	sb.WriteString(fmt.Sprintf("- character: %s\n", meta.Character))
	sb.WriteString(fmt.Sprintf("- model: %s\n", meta.Model))
	sb.WriteString(fmt.Sprintf("- generated_at: %s\n", meta.GeneratedAt))
	sb.WriteString(fmt.Sprintf("- topic: %s\n", meta.Topic))

	path := w.MarkdownPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &OutputError{Path: path, Message: "failed to open preview file", Cause: err}
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return &OutputError{Path: path, Message: "failed to append preview", Cause: err}
	}
	if err := f.Close(); err != nil {
		return &OutputError{Path: path, Message: "failed to close preview file", Cause: err}
	}
	return nil
}

// WritePayload validates p against payload.schema.json and atomically
// replaces the payload file with it.
func (w *Writer) WritePayload(p Payload) error {
	path := w.PayloadPath()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &OutputError{Path: path, Message: "failed to encode payload", Cause: err}
	}
	if err := schemas.ValidatePayload(data); err != nil {
		return &OutputError{Path: path, Message: "payload does not match schema", Cause: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(w.dir, ".payload-*.tmp")
	if err != nil {
		return &OutputError{Path: path, Message: "failed to create temp file", Cause: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &OutputError{Path: path, Message: "failed to write payload", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &OutputError{Path: path, Message: "failed to sync payload", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &OutputError{Path: path, Message: "failed to close payload", Cause: err}
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &OutputError{Path: path, Message: "failed to replace payload", Cause: err}
	}
	return nil
}

// ReadPayload loads and validates the payload file.
func (w *Writer) ReadPayload() (*Payload, error) {
	path := w.PayloadPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &OutputError{Path: path, Message: "failed to read payload", Cause: err}
	}
	if err := schemas.ValidatePayload(data); err != nil {
		return nil, &OutputError{Path: path, Message: "payload does not match schema", Cause: err}
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &OutputError{Path: path, Message: "failed to decode payload", Cause: err}
	}
	return &p, nil
}
