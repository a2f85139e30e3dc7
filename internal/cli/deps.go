// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jeranaias/docmind-tui/internal/askapi"
	"github.com/jeranaias/docmind-tui/internal/config"
	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/identity"
	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/storage"
)

// Dependencies holds everything commands need. Kong binds it into each
// command's Run method.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Globals *Globals

	// Config is the effective configuration: file, then environment, then
	// flags. ConfigPath is the file it came from, or the default TOML path
	// when no file exists yet.
	Config     *config.Config
	ConfigPath string

	Logger   *slog.Logger
	DB       *storage.DB
	QueryLog *storage.QueryLog // nil when the query log is disabled
	Accounts *identity.LocalProvider
	Client   *askapi.Client
	Asker    askapi.Asker

	prompt  *prompter
	closers []func() error
}

// prompter returns the shared reader for interactive prompts. Prompts are
// written to stderr so stdout stays clean for piping.
func (d *Dependencies) prompter() *prompter {
	if d.prompt == nil {
		d.prompt = newPrompter(d.Stdin, d.Stderr)
	}
	return d.prompt
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// LoadConfig resolves the effective configuration.
func (d *Dependencies) LoadConfig(g *Globals) error {
	d.Globals = g

	var (
		cfg *config.Config
		err error
	)
	if g.ConfigFile != "" {
		cfg, err = config.LoadFromPath(g.ConfigFile)
		d.ConfigPath = g.ConfigFile
	} else {
		cfg, err = config.Load()
		d.ConfigPath = defaultConfigPath()
	}
	if err != nil {
		return err
	}

	applyFlags(cfg, g)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	d.Config = cfg
	config.SetGlobal(cfg)
	return nil
}

// applyFlags layers command line flags over cfg.
func applyFlags(cfg *config.Config, g *Globals) {
	if g == nil {
		return
	}
	if g.APIURL != "" {
		cfg.API.BaseURL = g.APIURL
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
}

// defaultConfigPath returns the config file Load would read, preferring an
// existing TOML file, then JSON, then the TOML path for a file not yet
// written.
func defaultConfigPath() string {
	toml, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(toml); err == nil {
		return toml
	}
	if json, err := config.ConfigPathJSON(); err == nil {
		if _, err := os.Stat(json); err == nil {
			return json
		}
	}
	return toml
}

// =============================================================================
// SERVICES
// =============================================================================

// Open starts logging and opens the database, account provider and
// service client.
func (d *Dependencies) Open() error {
	if d.Config == nil {
		return errors.New("config not loaded")
	}
	cfg := d.Config

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		// Diagnostics are optional; keep going on stderr.
		fmt.Fprintf(d.Stderr, "warning: %v\n", err)
		logger = slog.New(slog.NewTextHandler(d.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	} else {
		d.closers = append(d.closers, closeLog)
	}
	d.Logger = logger
	slog.SetDefault(logger)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	d.DB = storage.NewDB(dbPath)
	if err := d.DB.Open(); err != nil {
		return err
	}
	d.closers = append(d.closers, d.DB.Close)

	if !cfg.Storage.DisableQueryLog {
		d.QueryLog = storage.NewQueryLog(d.DB)
	}

	sessionPath, err := config.SessionPath()
	if err != nil {
		return err
	}
	d.Accounts, err = identity.NewLocalProvider(d.Ctx, storage.NewAccountStore(d.DB), sessionPath,
		identity.WithLogger(logger))
	if err != nil {
		return err
	}

	d.Client = askapi.NewClient(&askapi.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
	d.Asker = askapi.NewLoggingAsker(d.Client, logger)

	logger.Debug("dependencies ready",
		"base_url", d.Client.BaseURL(),
		"database", dbPath,
		"query_log", d.QueryLog != nil,
	)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// NewController creates a conversation wired to the ask client, query log
// and signed-in identity.
func (d *Dependencies) NewController(onAppend func(model.Turn)) *conversation.Controller {
	opts := conversation.Options{
		Asker:    d.Asker,
		Logger:   d.Logger,
		OnAppend: onAppend,
		Tool:     d.Config.Storage.Tool,
	}
	if d.Accounts != nil {
		opts.Identity = d.Accounts
	}
	if d.QueryLog != nil {
		opts.QueryLog = d.QueryLog
	}
	return conversation.New(opts)
}

// identityName names the signed-in user, or "" when anonymous.
func (d *Dependencies) identityName() string {
	if d.Accounts == nil {
		return ""
	}
	if id := d.Accounts.Current(); id != nil {
		return id.Name()
	}
	return ""
}

// openLogger opens the diagnostic log file for appending.
func openLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()})
	return slog.New(h), f.Close, nil
}
