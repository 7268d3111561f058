package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/config"
	"github.com/jonathan/autopost/internal/llm"
	"github.com/jonathan/autopost/internal/preview"
)

const testPersona = `character:
  name: Techie
  personality: Curious engineer who loves explaining things simply
  tone: friendly
  interests: [programming languages, compilers]
  knowledge_level: expert
  speaking_style:
    emoji_frequency: low
    max_emoji_per_tweet: 1
  constraints:
    max_tweet_length: 140
    avoid_topics: [politics]
`

const (
	novelPost = "Rust's borrow checker finally clicked for me today, and it feels like a superpower"
	otherPost = "Reading the Go scheduler source on a rainy Sunday is oddly relaxing"
)

// scriptedClient replays replies in order, repeating the last one.
type scriptedClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	closed  bool
}

func (c *scriptedClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	i := min(c.calls-1, len(c.replies)-1)
	return c.replies[i], nil
}

func (c *scriptedClient) GetModel(tier llm.ModelTier) string { return "scripted-" + string(tier) }

func (c *scriptedClient) Close() error {
	c.closed = true
	return nil
}

type testEnv struct {
	dir         string
	configPath  string
	personaPath string
	historyPath string
	outDir      string
}

// newTestEnv writes a persona and a config pointing at a temp directory, and
// blanks the environment overrides so the host cannot leak into the run.
func newTestEnv(t *testing.T, apiKey string) testEnv {
	t.Helper()
	for _, key := range []string{config.EnvAPIKey, config.EnvTopic, config.EnvDryRun, config.EnvDatabaseURL, config.EnvRedisAddr} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := testEnv{
		dir:         dir,
		configPath:  filepath.Join(dir, "config.json"),
		personaPath: filepath.Join(dir, "character.yaml"),
		historyPath: filepath.Join(dir, "history.jsonl"),
		outDir:      filepath.Join(dir, "out"),
	}
	require.NoError(t, os.WriteFile(env.personaPath, []byte(testPersona), 0o644))

	cfg := map[string]any{
		"persona_path": env.personaPath,
		"output_dir":   env.outDir,
		"history":      map[string]any{"backend": "file", "path": env.historyPath},
	}
	if apiKey != "" {
		cfg["llm"] = map[string]any{"api_key": apiKey}
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.configPath, data, 0o644))
	return env
}

func testDeps(client llm.Client) deps {
	return deps{
		newClient: func(context.Context, *config.Config) (llm.Client, error) {
			return client, nil
		},
		now:    func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) },
		logger: zap.NewNop(),
	}
}

func runCLI(t *testing.T, d deps, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd(d)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func historyLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func readPayload(t *testing.T, dir string) *preview.Payload {
	t.Helper()
	w, err := preview.NewWriter(dir)
	require.NoError(t, err)
	p, err := w.ReadPayload()
	require.NoError(t, err)
	return p
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("unknown flag"), want: ExitConfig},
		{name: "tagged", err: withExit(ExitOutput, errors.New("disk full")), want: ExitOutput},
		{name: "wrapped tag", err: fmt.Errorf("outer: %w", withExit(ExitInit, errors.New("x"))), want: ExitInit},
		{name: "cancelled", err: withExit(ExitOutput, context.Canceled), want: ExitInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
	assert.NoError(t, withExit(ExitConfig, nil))
}

func TestRoot_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "test-key")
	require.NoError(t, os.WriteFile(env.configPath, []byte(`{"gate": {"jaccard_threshold": 2}}`), 0o644))

	_, _, err := runCLI(t, testDeps(&scriptedClient{}), "--config", env.configPath, "history", "list")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, exitCode(err))
}

func TestRoot_BadDryRunEnv(t *testing.T) {
	env := newTestEnv(t, "test-key")
	t.Setenv(config.EnvDryRun, "maybe")

	_, _, err := runCLI(t, testDeps(&scriptedClient{}), "--config", env.configPath, "history", "list")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, exitCode(err))
}
