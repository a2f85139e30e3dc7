// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/export"
	"github.com/jeranaias/docmind-tui/internal/ui/components"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// =============================================================================
// LINE READER
// =============================================================================

// ChatPrompt is shown before each question.
const ChatPrompt = "docmind> "

// LineReader reads one line of input per prompt. io.EOF ends the session.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// linerReader is the terminal LineReader with persistent history.
type linerReader struct {
	state       *liner.State
	historyPath string
}

func newLinerReader(historyPath string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	r := &linerReader{state: state, historyPath: historyPath}
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return line, err
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

// Close saves history (0600) and restores the terminal.
func (r *linerReader) Close() error {
	if r.historyPath != "" {
		var buf bytes.Buffer
		if _, err := r.state.WriteHistory(&buf); err == nil {
			_ = util.AtomicWriteFile(r.historyPath, buf.Bytes(), 0600)
		}
	}
	return r.state.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// ChatCmd runs a line-based conversation. Lines starting with "/" are
// commands; anything else is a question.
type ChatCmd struct {
	NoHistory bool `help:"Do not read or save line history."`

	// Lines replaces the terminal reader. Tests only.
	Lines LineReader `kong:"-"`
}

// Run starts the session and returns when input ends or /quit is entered.
func (c *ChatCmd) Run(deps *Dependencies) error {
	lines := c.Lines
	if lines == nil {
		historyPath := ""
		if !c.NoHistory {
			historyPath, _ = util.DataPath("chat_history")
		}
		lines = newLinerReader(historyPath)
	}
	defer lines.Close()

	p := newPrinter(deps.Stdout, deps.Config, deps.Globals.NoColor)
	ctrl := deps.NewController(nil)
	ctrl.Mount()
	defer ctrl.Wait()

	if greeting, ok := ctrl.LastAnswer(); ok {
		p.Label()
		p.CompactAnswer(greeting)
	}
	p.Hint("Type a question, /help for commands, /quit to leave.")

	for {
		if err := deps.Ctx.Err(); err != nil {
			return nil
		}
		line, err := lines.Prompt(ChatPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(deps.Stdout)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			if quit := c.command(deps, p, ctrl, line); quit {
				return nil
			}
			continue
		}

		p.Hint("%s...", components.ThinkingText)
		turn, ok := ctrl.SubmitQuestion(deps.Ctx, line)
		if !ok {
			continue
		}
		fmt.Fprintln(deps.Stdout)
		p.Label()
		p.CompactAnswer(turn)
		fmt.Fprintln(deps.Stdout)
	}
}

// command runs one slash command and reports whether the session should end.
func (c *ChatCmd) command(deps *Dependencies, p *printer, ctrl *conversation.Controller, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		p.Hint("/topics              popular topics")
		p.Hint("/sources             full sources for the last answer")
		p.Hint("/copy                copy the last answer")
		p.Hint("/export [format]     save the conversation (markdown, html, json)")
		p.Hint("/quit                leave")

	case "/topics":
		for _, t := range conversation.PopularTopics {
			fmt.Fprintf(deps.Stdout, "  • %s\n", t)
		}

	case "/sources":
		turn, ok := ctrl.LastAnswer()
		if !ok || len(turn.Citations) == 0 {
			p.Hint("No sources for the last answer.")
			return false
		}
		p.Answer(turn)

	case "/copy":
		turn, ok := ctrl.LastAnswer()
		if !ok {
			return false
		}
		if err := clipboard.WriteAll(turn.Text); err != nil {
			p.Error("Copy failed: %v", err)
			return false
		}
		p.Hint("Copied the last answer.")

	case "/export":
		format := export.FormatMarkdown
		if len(fields) > 1 {
			f, err := export.ParseFormat(fields[1])
			if err != nil {
				p.Error("%v", err)
				return false
			}
			format = f
		}
		path, err := exportTurns(deps, ctrl, format, "", "")
		if err != nil {
			p.Error("Export failed: %v", err)
			return false
		}
		p.Hint("Exported to %s", path)

	default:
		p.Error("Unknown command %s, try /help", fields[0])
	}
	return false
}
