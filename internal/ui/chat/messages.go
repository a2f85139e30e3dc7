// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/export"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AnswerMsg carries a finished request back onto the event loop.
type AnswerMsg struct {
	Result conversation.Result
}

// HealthMsg reports the outcome of a health check.
type HealthMsg struct {
	Online bool
	Err    error
}

// healthTickMsg schedules the next health check.
type healthTickMsg struct{}

// ConfigReloadedMsg is sent after the config file changed on disk.
type ConfigReloadedMsg struct {
	BaseURL string
}

// ExportDoneMsg reports an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// CopyDoneMsg reports a clipboard write.
type CopyDoneMsg struct {
	Err error
}

// clearStatusMsg clears the status message if it is still the one set at id.
type clearStatusMsg struct {
	id int
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// HealthChecker reports whether the documentation service is reachable.
type HealthChecker interface {
	CheckRunning(ctx context.Context) error
}

const healthTimeout = 5 * time.Second

const statusTTL = 4 * time.Second

func fetchCmd(ctx context.Context, ctrl *conversation.Controller, req conversation.Request) tea.Cmd {
	return func() tea.Msg {
		return AnswerMsg{Result: ctrl.Fetch(ctx, req)}
	}
}

func checkHealthCmd(ctx context.Context, checker HealthChecker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		err := checker.CheckRunning(ctx)
		return HealthMsg{Online: err == nil, Err: err}
	}
}

func healthTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func exportCmd(conv *export.Conversation, exp export.Exporter, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		path, err := export.ExportToFile(conv, exp, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// copyFunc is replaced in tests; the system clipboard is unavailable there.
var copyFunc = clipboard.WriteAll

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopyDoneMsg{Err: copyFunc(text)}
	}
}

func clearStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}
