// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/alecthomas/kong"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND TREE
// =============================================================================

// Globals are flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" help:"Config file (TOML or JSON)." type:"path"`
	APIURL     string `name:"api-url" help:"Documentation service URL."`
	LogLevel   string `name:"log-level" help:"Diagnostic log level (debug, info, warn, error)."`
	NoColor    bool   `name:"no-color" help:"Disable colours and styling."`
}

// CLI is the kong command tree.
type CLI struct {
	Globals

	TUI     TUICmd     `cmd:"" name:"tui" default:"1" help:"Open the full-screen chat (default)."`
	Ask     AskCmd     `cmd:"" help:"Ask one question and print the answer."`
	Chat    ChatCmd    `cmd:"" help:"Line-based chat with history."`
	Status  StatusCmd  `cmd:"" help:"Check the documentation service."`
	Init    InitCmd    `cmd:"" help:"Build the service's knowledge base."`
	History HistoryCmd `cmd:"" help:"List logged questions."`
	Export  ExportCmd  `cmd:"" help:"Ask questions and export the conversation."`
	Auth    AuthCmd    `cmd:"" help:"Manage the local account."`
	Config  ConfigCmd  `cmd:"" help:"Show configuration."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// offline commands run without the database, log file or service client.
var offline = map[string]bool{
	"config show": true,
	"config path": true,
	"config init": true,
	"version":     true,
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Main runs the command line with injectable input.
type Main struct {
	Stdin io.Reader

	// Lines replaces the chat command's terminal line reader.
	Lines LineReader
}

// Run parses args and executes the selected command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	m := &Main{Stdin: os.Stdin}
	return m.Run(ctx, args, stdout, stderr)
}

// Run parses args and executes the selected command.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	cli.Chat.Lines = m.Lines
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}

	exited := false
	parser, err := kong.New(&cli,
		kong.Name("docmind"),
		kong.Description("Ask questions about your documentation from the terminal."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.Bind(deps),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if exited {
		// --help already printed usage.
		return nil
	}
	if err != nil {
		return err
	}

	if err := deps.LoadConfig(&cli.Globals); err != nil {
		return err
	}
	if !offline[commandPath(kctx)] {
		if err := deps.Open(); err != nil {
			return err
		}
	}
	defer deps.Close()

	return kctx.Run()
}

// commandPath strips positional placeholders from kong's command string,
// so "ask <question>" becomes "ask".
func commandPath(kctx *kong.Context) string {
	var parts []string
	for _, f := range strings.Fields(kctx.Command()) {
		if strings.HasPrefix(f, "<") {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// =============================================================================
// VERSION
// =============================================================================

// VersionCmd prints build information.
type VersionCmd struct {
	Short bool `help:"Print only the version number."`
}

// Run prints the version.
func (c *VersionCmd) Run(deps *Dependencies) error {
	if c.Short {
		fmt.Fprintln(deps.Stdout, Version)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "docmind %s\n", Version)
	fmt.Fprintf(deps.Stdout, "  commit: %s\n", GitCommit)
	fmt.Fprintf(deps.Stdout, "  built:  %s\n", BuildDate)
	fmt.Fprintf(deps.Stdout, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
