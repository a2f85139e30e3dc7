// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/export"
)

// ExportCmd asks each question in turn and writes the conversation to a
// file.
type ExportCmd struct {
	Questions []string `arg:"" help:"Questions to ask, one argument each."`
	Format    string   `short:"f" default:"markdown" help:"Output format: markdown, html or json."`
	Out       string   `short:"o" type:"path" help:"Output directory (default ~/.docmind/exports)."`
	Dark      bool     `help:"Use the dark theme for HTML output."`
}

// Run asks the questions and exports the transcript.
func (c *ExportCmd) Run(deps *Dependencies) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	ctrl := deps.NewController(nil)
	ctrl.Mount()
	asked := 0
	for _, q := range c.Questions {
		if _, ok := ctrl.SubmitQuestion(deps.Ctx, q); ok {
			asked++
		}
		if err := deps.Ctx.Err(); err != nil {
			return err
		}
	}
	ctrl.Wait()
	if asked == 0 {
		return ErrNoQuestion
	}

	theme := ""
	if c.Dark {
		theme = "dark"
	}
	path, err := exportTurns(deps, ctrl, format, c.Out, theme)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, path)
	return nil
}

// exportTurns writes ctrl's transcript in format into dir (or the default
// export directory) and returns the file path. An empty theme keeps the
// default.
func exportTurns(deps *Dependencies, ctrl *conversation.Controller, format export.Format, dir, theme string) (string, error) {
	opts := export.DefaultOptions()
	if dir != "" {
		opts.OutputDir = dir
	}
	if theme != "" {
		opts.Theme = theme
	}
	exporter, err := export.New(format, opts)
	if err != nil {
		return "", err
	}
	conv := export.NewConversation(ctrl.Turns(), deps.identityName())
	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return "", err
	}
	deps.Logger.Info("conversation exported", "format", format, "turns", len(conv.Turns))
	return path, nil
}
