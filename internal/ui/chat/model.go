// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/export"
	"github.com/jeranaias/docmind-tui/internal/identity"
	"github.com/jeranaias/docmind-tui/internal/ui/components"
	"github.com/jeranaias/docmind-tui/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Model.
type Options struct {
	// Controller owns the transcript. Required.
	Controller *conversation.Controller

	// Follow must be the controller's OnAppend hook. Required.
	Follow *Follow

	// Health drives the header indicator. Optional.
	Health HealthChecker

	// HealthInterval between checks; zero checks once at start.
	HealthInterval time.Duration

	// Identity names the exported conversation. Optional.
	Identity identity.Provider

	// Exporter for ctrl+s; defaults to Markdown.
	Exporter      export.Exporter
	ExportOptions *export.Options

	Theme    *styles.Theme
	Markdown *components.MarkdownRenderer
	Sources  components.SourcesOptions

	// Context bounds every request; cancel it to abandon in-flight work.
	Context context.Context
	Logger  *slog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view.
type Model struct {
	ctx        context.Context
	ctrl       *conversation.Controller
	follow     *Follow
	health     HealthChecker
	interval   time.Duration
	identity   identity.Provider
	exporter   export.Exporter
	exportOpts *export.Options
	logger     *slog.Logger

	theme    *styles.Theme
	keys     KeyMap
	input    Input
	viewport viewport.Model
	spinner  spinner.Model
	header   *components.Header
	status   *components.StatusBar
	messages *components.MessageView

	width  int
	height int
	ready  bool

	// Rendered transcript, reused until a turn is added or the width changes.
	rendered      string
	renderedTurns int
	renderedWidth int

	statusID int
}

// New creates the chat model.
func New(opts Options) Model {
	if opts.Controller == nil || opts.Follow == nil {
		panic("chat: Options.Controller and Options.Follow are required")
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Markdown == nil {
		opts.Markdown = components.NewMarkdownRenderer(components.ResolveStyle(components.StyleAuto, opts.Theme.IsDark))
	}
	if opts.ExportOptions == nil {
		opts.ExportOptions = export.DefaultOptions()
	}
	if opts.Exporter == nil {
		opts.Exporter = export.NewMarkdownExporter(opts.ExportOptions)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	messages := components.NewMessageView(opts.Theme, opts.Markdown)
	messages.Sources = opts.Sources

	sp := spinner.New(
		spinner.WithSpinner(styles.BrailleSpinner.Bubbles()),
		spinner.WithStyle(opts.Theme.AssistantLabel),
	)

	return Model{
		ctx:        opts.Context,
		ctrl:       opts.Controller,
		follow:     opts.Follow,
		health:     opts.Health,
		interval:   opts.HealthInterval,
		identity:   opts.Identity,
		exporter:   opts.Exporter,
		exportOpts: opts.ExportOptions,
		logger:     opts.Logger,
		theme:      opts.Theme,
		keys:       DefaultKeyMap(),
		input:      NewInput(opts.Theme),
		spinner:    sp,
		header:     components.NewHeader(opts.Theme),
		status:     components.NewStatusBar(opts.Theme),
		messages:   messages,
	}
}

// Init seeds the greeting and starts the first health check.
func (m Model) Init() tea.Cmd {
	m.ctrl.Mount()

	cmds := []tea.Cmd{textinput.Blink}
	if m.health != nil {
		cmds = append(cmds, checkHealthCmd(m.ctx, m.health))
	}
	return tea.Batch(cmds...)
}

// Update handles one event.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case AnswerMsg:
		m.ctrl.Complete(msg.Result)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case HealthMsg:
		return m.handleHealth(msg)

	case healthTickMsg:
		if m.health == nil {
			return m, nil
		}
		return m, checkHealthCmd(m.ctx, m.health)

	case ConfigReloadedMsg:
		return m, m.setStatus("Config reloaded: "+msg.BaseURL, false)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.logger.Error("export failed", "err", msg.Err)
			return m, m.setStatus("Export failed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus("Exported to "+msg.Path, false)

	case CopyDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("clipboard write failed", "err", msg.Err)
			return m, m.setStatus("Clipboard unavailable", true)
		}
		return m, m.setStatus("Copied answer", false)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status.SetMessage("", false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

const (
	inputHeight  = 3 // bordered single line
	hintHeight   = 1
	statusHeight = 1
)

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.messages.SetWidth(m.width)
	m.input.SetWidth(m.width - 8)

	vpHeight := m.height - lipgloss.Height(m.header.View()) - inputHeight - hintHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}

	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Newline):
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		last, ok := m.ctrl.LastAnswer()
		if !ok {
			return m, nil
		}
		return m, copyCmd(last.Text)

	case key.Matches(msg, m.keys.Export):
		conv := export.NewConversation(m.ctrl.Turns(), m.identityName())
		return m, exportCmd(conv, m.exporter, m.exportOpts)

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the buffer to the controller and starts the request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text, ok := m.input.Submit(m.ctrl.Pending())
	if !ok {
		return m, nil
	}
	req, ok := m.ctrl.Begin(text)
	if !ok {
		return m, nil
	}
	m.refresh()
	return m, tea.Batch(fetchCmd(m.ctx, m.ctrl, req), m.spinner.Tick)
}

func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	if msg.Online {
		m.header.SetHealth(components.HealthOnline)
	} else {
		m.header.SetHealth(components.HealthOffline)
		m.logger.Debug("health check failed", "err", msg.Err)
	}
	if m.interval > 0 {
		return m, healthTickCmd(m.interval)
	}
	return m, nil
}

// setStatus shows msg in the status bar until statusTTL passes or another
// message replaces it.
func (m *Model) setStatus(msg string, isError bool) tea.Cmd {
	m.statusID++
	m.status.SetMessage(msg, isError)
	return clearStatusCmd(m.statusID)
}

// refresh re-renders the viewport. It scrolls to the bottom when a turn was
// appended or the view was already at the bottom.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	if n := m.ctrl.Len(); n != m.renderedTurns || m.width != m.renderedWidth {
		m.rendered = m.messages.RenderAll(m.ctrl.Turns())
		m.renderedTurns = n
		m.renderedWidth = m.width
	}

	content := m.rendered
	if m.ctrl.Pending() {
		content += "\n\n" + m.messages.RenderThinking(m.spinner.View())
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if m.follow.Take() || atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) identityName() string {
	if m.identity == nil {
		return ""
	}
	if id := m.identity.Current(); id != nil {
		return id.Name()
	}
	return ""
}

// Pending reports whether a question is in flight.
func (m Model) Pending() bool {
	return m.ctrl.Pending()
}

// InputValue returns the current buffer.
func (m Model) InputValue() string {
	return m.input.Value()
}
