// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/autopost/internal/gate"
	"github.com/jonathan/autopost/internal/history"
	"github.com/jonathan/autopost/internal/llm"
	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/schemas"
)

// Default locations, relative to the working directory
const (
	DefaultPersonaPath = "data/character.yaml"
	DefaultHistoryPath = "data/history.jsonl"
	DefaultSQLitePath  = "data/history.db"
	DefaultOutputDir   = "out_auto"
)

// Environment variables that override file values
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvTopic       = "TWEET_TOPIC"
	EnvDryRun      = "DRY_RUN"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisAddr   = "REDIS_ADDR"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values are filled by MergeWithDefaults.
type Config struct {
	PersonaPath string `json:"persona_path,omitempty" validate:"required"` // Persona YAML file
	OutputDir   string `json:"output_dir,omitempty" validate:"required"`   // Markdown preview and JSON payload directory
	Topic       string `json:"topic,omitempty"`                            // Default post topic; empty lets the model choose
	DryRun      bool   `json:"dry_run,omitempty"`                          // Generate and record, but do not hand the post over
	Verbose     bool   `json:"verbose,omitempty"`                          // Debug logging

	History history.Options `json:"history"`
	Gate    GateConfig      `json:"gate"`
	LLM     LLMConfig       `json:"llm"`
}

// GateConfig holds the comparison parameters and the retry budget.
type GateConfig struct {
	ShingleSize      int     `json:"shingle_size,omitempty" validate:"gte=1,lte=16"`
	FingerprintBits  int     `json:"fingerprint_bits,omitempty" validate:"eq=64"`
	JaccardThreshold float64 `json:"jaccard_threshold,omitempty" validate:"gt=0,lte=1"`
	// HammingThreshold is a pointer so that an explicit 0 survives merging
	HammingThreshold *int `json:"hamming_threshold,omitempty" validate:"required,gte=0,lte=64"`
	MaxAttempts      int  `json:"max_attempts,omitempty" validate:"gte=1,lte=20"`
}

// Params converts the gate settings to comparison parameters.
func (g GateConfig) Params() novelty.Params {
	p := novelty.Params{
		ShingleSize:      g.ShingleSize,
		FingerprintBits:  g.FingerprintBits,
		JaccardThreshold: g.JaccardThreshold,
	}
	if g.HammingThreshold != nil {
		p.HammingThreshold = *g.HammingThreshold
	}
	return p
}

// LLMConfig selects the model used to draft posts.
type LLMConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"` // Overrides the model of the selected tier
	Tier   string `json:"tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
	// Temperature is a pointer so that an explicit 0 survives merging
	Temperature *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ModelConfig builds the llm configuration.
func (l LLMConfig) ModelConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if l.Model != "" {
		cfg = cfg.WithModel(l.ModelTier(), l.Model)
	}
	if l.Temperature != nil {
		cfg = cfg.WithTemperature(*l.Temperature)
	}
	return cfg
}

// ModelTier returns the configured tier, defaulting to standard.
func (l LLMConfig) ModelTier() llm.ModelTier {
	if l.Tier == "" {
		return llm.TierStandard
	}
	return llm.ModelTier(l.Tier)
}

// Default returns the policy defaults: trigrams, 64-bit fingerprints, Jaccard
// 0.80, Hamming 3, three attempts and a JSON Lines history file.
func Default() Config {
	params := novelty.DefaultParams()
	hamming := params.HammingThreshold
	temperature := llm.DefaultTemperature
	return Config{
		PersonaPath: DefaultPersonaPath,
		OutputDir:   DefaultOutputDir,
		History: history.Options{
			Backend: history.BackendFile,
			Path:    DefaultHistoryPath,
			Corpus:  history.DefaultCorpus,
		},
		Gate: GateConfig{
			ShingleSize:      params.ShingleSize,
			FingerprintBits:  params.FingerprintBits,
			JaccardThreshold: params.JaccardThreshold,
			HammingThreshold: &hamming,
			MaxAttempts:      gate.DefaultMaxAttempts,
		},
		LLM: LLMConfig{
			Tier:        string(llm.TierStandard),
			Temperature: &temperature,
		},
	}
}

// LoadConfig loads configuration from a JSON file. The document is checked
// against config.schema.json before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse config JSON: %s is not valid JSON", path)
	}
	if err := schemas.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load returns the effective configuration: the file at path (if any) merged
// over Default, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	file := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	cfg := file.MergeWithDefaults(Default())
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv(EnvTopic); v != "" {
		c.Topic = v
	}
	if v := strings.TrimSpace(getenv(EnvDryRun)); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a boolean, got %q", EnvDryRun, v)
		}
		c.DryRun = dryRun
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.History.DSN = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.History.RedisAddr = v
	}
	return nil
}

// Validate checks field ranges and the settings each history backend needs.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.History.Backend {
	case "", history.BackendFile, history.BackendSQLite:
		if c.History.Path == "" {
			return fmt.Errorf("config error: history backend %q requires 'history.path'", c.History.Backend)
		}
	case history.BackendPostgres:
		if c.History.DSN == "" {
			return fmt.Errorf("config error: postgres history requires 'history.dsn' or %s", EnvDatabaseURL)
		}
	case history.BackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("config error: redis history requires 'history.redis_addr' or %s", EnvRedisAddr)
		}
	}

	if err := c.Gate.Params().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RequireAPIKey reports a missing Gemini key.
func (c *Config) RequireAPIKey() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config error: no API key; set 'llm.api_key' or %s", EnvAPIKey)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.PersonaPath == "" {
		result.PersonaPath = defaults.PersonaPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Topic == "" {
		result.Topic = defaults.Topic
	}
	if result.History.Backend == "" {
		result.History.Backend = defaults.History.Backend
	}
	if result.History.Path == "" {
		switch {
		case result.History.Backend == defaults.History.Backend:
			result.History.Path = defaults.History.Path
		case result.History.Backend == history.BackendSQLite:
			result.History.Path = DefaultSQLitePath
		}
	}
	if result.History.DSN == "" {
		result.History.DSN = defaults.History.DSN
	}
	if result.History.RedisAddr == "" {
		result.History.RedisAddr = defaults.History.RedisAddr
	}
	if result.History.Corpus == "" {
		result.History.Corpus = defaults.History.Corpus
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Model == "" {
		result.LLM.Model = defaults.LLM.Model
	}
	if result.LLM.Tier == "" {
		result.LLM.Tier = defaults.LLM.Tier
	}

	// Numeric fields: use default if zero
	if result.Gate.ShingleSize == 0 {
		result.Gate.ShingleSize = defaults.Gate.ShingleSize
	}
	if result.Gate.FingerprintBits == 0 {
		result.Gate.FingerprintBits = defaults.Gate.FingerprintBits
	}
	if result.Gate.JaccardThreshold == 0 {
		result.Gate.JaccardThreshold = defaults.Gate.JaccardThreshold
	}
	if result.Gate.HammingThreshold == nil && defaults.Gate.HammingThreshold != nil {
		hamming := *defaults.Gate.HammingThreshold
		result.Gate.HammingThreshold = &hamming
	}
	if result.Gate.MaxAttempts == 0 {
		result.Gate.MaxAttempts = defaults.Gate.MaxAttempts
	}
	if result.LLM.Temperature == nil && defaults.LLM.Temperature != nil {
		temperature := *defaults.LLM.Temperature
		result.LLM.Temperature = &temperature
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and environment always win for bools)

	return result
}
