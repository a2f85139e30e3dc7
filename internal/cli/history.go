// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/docmind-tui/internal/identity"
	"github.com/jeranaias/docmind-tui/internal/storage"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// HistoryCmd lists logged questions, newest first.
type HistoryCmd struct {
	Limit    int    `short:"n" default:"20" help:"Maximum number of entries."`
	Mine     bool   `help:"Only questions asked by the signed-in account."`
	Contains string `short:"s" help:"Only questions containing this text."`
	JSON     bool   `name:"json" help:"Print entries as JSON."`
}

// historyEntry is the --json shape of one entry.
type historyEntry struct {
	ID        string `json:"id"`
	Identity  string `json:"identity_id,omitempty"`
	Tool      string `json:"tool"`
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
}

// Run prints the matching entries.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if deps.QueryLog == nil {
		fmt.Fprintln(deps.Stdout, "The query log is disabled.")
		return nil
	}

	opts := storage.ListOptions{Limit: c.Limit, Contains: c.Contains}
	if c.Mine {
		opts.IdentityID = identity.IDOf(deps.Accounts)
		if opts.IdentityID == "" {
			return identity.ErrNotSignedIn
		}
	}

	entries, err := deps.QueryLog.List(deps.Ctx, opts)
	if err != nil {
		return err
	}

	if c.JSON {
		out := make([]historyEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, historyEntry{
				ID:        e.ID,
				Identity:  e.IdentityID,
				Tool:      e.Tool,
				Query:     e.Query,
				Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			})
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No questions logged yet.")
		return nil
	}

	width := terminalWidth(deps.Stdout)
	queryWidth := max(width-2-16-2-10-2, 20)
	for _, e := range entries {
		who := "anonymous"
		if !e.Anonymous() {
			who = e.IdentityID[:min(8, len(e.IdentityID))]
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			util.PadRight(who, 10),
			util.TruncateWidth(util.OneLine(util.StripControl(e.Query)), queryWidth),
		)
	}
	return nil
}
