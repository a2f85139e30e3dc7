// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/docmind-tui/internal/askapi"
)

// statusTimeout bounds the health probe.
const statusTimeout = 5 * time.Second

// StatusCmd reports service reachability and local state.
type StatusCmd struct{}

// Run probes the service and prints a summary. It returns ErrServiceOffline
// when the probe fails.
func (c *StatusCmd) Run(deps *Dependencies) error {
	p := newPrinter(deps.Stdout, deps.Config, deps.Globals.NoColor)

	ctx, cancel := context.WithTimeout(deps.Ctx, statusTimeout)
	defer cancel()
	probeErr := deps.Client.CheckRunning(ctx)

	state := p.theme.StatusOnline.Render("● Online")
	if probeErr != nil {
		state = p.theme.StatusOffline.Render("● Offline")
	}
	fmt.Fprintf(deps.Stdout, "Service:   %s  %s\n", state, deps.Client.BaseURL())
	if probeErr != nil {
		fmt.Fprintf(deps.Stdout, "           %s (%s)\n", probeErr, askapi.TypeOf(probeErr))
	}

	account := "anonymous"
	if name := deps.identityName(); name != "" {
		account = name
	}
	fmt.Fprintf(deps.Stdout, "Account:   %s\n", account)

	if deps.QueryLog == nil {
		fmt.Fprintln(deps.Stdout, "Query log: disabled")
	} else if n, err := deps.QueryLog.Count(deps.Ctx); err == nil {
		fmt.Fprintf(deps.Stdout, "Query log: %d questions\n", n)
	}
	if v, err := deps.DB.SchemaVersion(deps.Ctx); err == nil {
		fmt.Fprintf(deps.Stdout, "Database:  %s (schema v%d)\n", deps.DB.Path(), v)
	}

	if probeErr != nil {
		deps.Logger.Warn("service offline", "base_url", deps.Client.BaseURL(), "error", probeErr)
		return ErrServiceOffline
	}
	return nil
}

// InitCmd asks the service to build its knowledge base.
type InitCmd struct{}

// Run triggers initialization and prints the service's message.
func (c *InitCmd) Run(deps *Dependencies) error {
	msg, err := deps.Client.Initialize(deps.Ctx)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if msg == "" {
		msg = "Knowledge base initialized."
	}
	fmt.Fprintln(deps.Stdout, msg)
	return nil
}
