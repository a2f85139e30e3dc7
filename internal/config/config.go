// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docmind-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docmind configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Documentation service
	API APIConfig `toml:"api" json:"api"`

	// Database and query log
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Diagnostic log
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Terminal presentation
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig locates the documentation service.
type APIConfig struct {
	// BaseURL of the service (default: http://127.0.0.1:8000)
	BaseURL string `toml:"base_url" json:"base_url"`

	// RequestTimeoutSecs bounds each ask. 0 disables the timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`

	// RequestsPerSecond throttles outgoing requests. 0 means unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`

	// HealthIntervalSecs is how often the TUI re-checks the service.
	// Negative disables periodic checks after the first one.
	HealthIntervalSecs int `toml:"health_interval_secs" json:"health_interval_secs"`
}

// StorageConfig controls the local database.
type StorageConfig struct {
	// Database path (default: ~/.docmind/docmind.db)
	Database string `toml:"database" json:"database"`

	// DisableQueryLog stops recording asked questions.
	DisableQueryLog bool `toml:"disable_query_log" json:"disable_query_log"`

	// Tool labels query log entries (default: "docmind")
	Tool string `toml:"tool" json:"tool"`
}

// LoggingConfig controls the diagnostic log file.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `toml:"level" json:"level"`

	// File path (default: ~/.docmind/docmind.log)
	File string `toml:"file" json:"file"`
}

// UIConfig controls rendering.
type UIConfig struct {
	// Theme selects the markdown style: auto, dark, light or notty
	Theme string `toml:"theme" json:"theme"`

	// WordWrap is the answer wrap width. 0 follows the terminal.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`

	// HideSnippets omits citation snippets.
	HideSnippets bool `toml:"hide_snippets" json:"hide_snippets"`

	// NoHyperlinks prints citation URLs instead of terminal hyperlinks.
	NoHyperlinks bool `toml:"no_hyperlinks" json:"no_hyperlinks"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBaseURL            = "http://127.0.0.1:8000"
	DefaultHealthIntervalSecs = 30
	DefaultTool               = "docmind"
	DefaultLogLevel           = "info"
	DefaultTheme              = "auto"

	configVersion = "1"
)

// Default returns a new Config with built-in defaults.
func Default() *Config {
	return &Config{
		Version: configVersion,
		API: APIConfig{
			BaseURL:            DefaultBaseURL,
			HealthIntervalSecs: DefaultHealthIntervalSecs,
		},
		Storage: StorageConfig{
			Tool: DefaultTool,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		UI: UIConfig{
			Theme: DefaultTheme,
		},
	}
}

// Timeout returns the ask timeout. Zero means none.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.RequestTimeoutSecs) * time.Second
}

// HealthInterval returns the period between health checks. Zero means
// periodic checks are off.
func (a APIConfig) HealthInterval() time.Duration {
	if a.HealthIntervalSecs < 0 {
		return 0
	}
	return time.Duration(a.HealthIntervalSecs) * time.Second
}

// SlogLevel maps Level to a slog level, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabasePath resolves the database location.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Database != "" {
		return c.Storage.Database, nil
	}
	return util.DataPath("docmind.db")
}

// LogPath resolves the diagnostic log location.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	return util.DataPath("docmind.log")
}

// SessionPath is where the signed-in identity is remembered.
func SessionPath() (string, error) {
	return util.DataPath("session.json")
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docmind configuration directory path.
func ConfigDir() (string, error) {
	return util.DataDir()
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return util.DataPath("config.toml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return util.DataPath("config.json")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension: .json is JSON, anything else TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg and fills defaults.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file into cfg and fills defaults.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.HealthIntervalSecs == 0 {
		cfg.API.HealthIntervalSecs = defaults.API.HealthIntervalSecs
	}
	if cfg.Storage.Tool == "" {
		cfg.Storage.Tool = defaults.Storage.Tool
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# docmind configuration file\n")
	b.WriteString("# Environment variables DOCMIND_API_URL, DOCMIND_LOG_LEVEL and DOCMIND_DB override these values.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns a ValidateErrors listing
// every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}

	if c.API.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.request_timeout_secs", Message: "must be 0 (disabled) or positive"})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_second", Message: "must be 0 (unlimited) or positive"})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light", "notty":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be 0 (terminal width) or positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - DOCMIND_API_URL: overrides api.base_url
//   - VITE_API_URL: same, used only when DOCMIND_API_URL is unset
//   - DOCMIND_TIMEOUT: overrides api.request_timeout_secs
//   - DOCMIND_LOG_LEVEL: overrides logging.level
//   - DOCMIND_DB: overrides storage.database
//   - DOCMIND_NO_QUERY_LOG: sets storage.disable_query_log
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("DOCMIND_API_URL"); u != "" {
		c.API.BaseURL = u
	} else if u := os.Getenv("VITE_API_URL"); u != "" {
		c.API.BaseURL = u
	}

	if t := os.Getenv("DOCMIND_TIMEOUT"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil {
			c.API.RequestTimeoutSecs = secs
		}
	}

	if level := os.Getenv("DOCMIND_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if db := os.Getenv("DOCMIND_DB"); db != "" {
		c.Storage.Database = db
	}

	if v := os.Getenv("DOCMIND_NO_QUERY_LOG"); v != "" {
		c.Storage.DisableQueryLog = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// COPY / DISPLAY
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access, falling back to defaults when the
// file cannot be loaded. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			slog.Warn("using default configuration", "err", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
