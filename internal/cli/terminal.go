// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest width used for wrapping.
	MinTerminalWidth = 40
)

type fder interface {
	Fd() uintptr
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns w's width, or DefaultTerminalWidth when w is not a
// terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(fder)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

// colorsEnabled respects NO_COLOR and FORCE_COLOR before falling back to
// TTY detection. See https://no-color.org/.
func colorsEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(w)
}

// colorProfile returns Ascii when colours are off, otherwise the profile
// termenv detects for w.
func colorProfile(w io.Writer, noColor bool) termenv.Profile {
	if !colorsEnabled(w, noColor) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// =============================================================================
// PROMPTS
// =============================================================================

// prompter reads answers to interactive prompts. Secrets are read without
// echo when stdin is a terminal.
type prompter struct {
	in  io.Reader
	out io.Writer
	buf *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, buf: bufio.NewReader(in)}
}

// Line prints label and reads one line.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.buf.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret prints label and reads one line without echo.
func (p *prompter) Secret(label string) (string, error) {
	if f, ok := p.in.(fder); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := p.Line(label)
	if err != nil {
		return "", err
	}
	return line, nil
}
