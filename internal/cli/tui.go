// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docmind-tui/internal/config"
	"github.com/jeranaias/docmind-tui/internal/export"
	"github.com/jeranaias/docmind-tui/internal/ui/chat"
	"github.com/jeranaias/docmind-tui/internal/ui/components"
	"github.com/jeranaias/docmind-tui/internal/ui/styles"
)

// TUICmd runs the full-screen chat.
type TUICmd struct {
	NoMouse bool   `help:"Disable mouse wheel scrolling."`
	Format  string `default:"markdown" help:"Export format for ctrl+s: markdown, html or json."`
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (c *TUICmd) Run(deps *Dependencies) error {
	if !isTerminal(deps.Stdout) {
		return ErrNotTerminal
	}

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	exportOpts := export.DefaultOptions()
	exporter, err := export.New(format, exportOpts)
	if err != nil {
		return err
	}

	cfg := deps.Config
	theme := styles.NewTheme()
	if deps.Globals.NoColor {
		theme = styles.NewThemeWithProfile(colorProfile(deps.Stdout, true), theme.IsDark)
	}
	style := components.ResolveStyle(cfg.UI.Theme, theme.IsDark)
	if theme.Plain() {
		style = components.StylePlain
	}

	follow := chat.NewFollow()
	ctrl := deps.NewController(follow.OnAppend)
	defer ctrl.Wait()

	m := chat.New(chat.Options{
		Controller:     ctrl,
		Follow:         follow,
		Health:         deps.Client,
		HealthInterval: cfg.API.HealthInterval(),
		Identity:       deps.Accounts,
		Exporter:       exporter,
		ExportOptions:  exportOpts,
		Theme:          theme,
		Markdown:       components.NewMarkdownRenderer(style),
		Sources: components.SourcesOptions{
			Hyperlinks:   !cfg.UI.NoHyperlinks && !theme.Plain(),
			HideSnippets: cfg.UI.HideSnippets,
		},
		Context: deps.Ctx,
		Logger:  deps.Logger,
	})

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(deps.Ctx),
		tea.WithOutput(deps.Stdout),
	}
	if !c.NoMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(m, opts...)

	if deps.ConfigPath != "" {
		w, err := config.NewWatcher(deps.ConfigPath, func(next *config.Config) {
			applyFlags(next, deps.Globals)
			deps.Client.SetBaseURL(next.API.BaseURL)
			config.SetGlobal(next)
			deps.Logger.Info("config reloaded", "base_url", deps.Client.BaseURL())
			program.Send(chat.ConfigReloadedMsg{BaseURL: deps.Client.BaseURL()})
		}, deps.Logger)
		if err != nil {
			deps.Logger.Warn("config watch disabled", "error", err)
		} else {
			w.Start(deps.Ctx)
			defer w.Close()
		}
	}

	deps.Logger.Info("chat started", "base_url", deps.Client.BaseURL())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && deps.Ctx.Err() != nil {
		return nil
	}
	return err
}
