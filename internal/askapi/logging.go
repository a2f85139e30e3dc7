// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"log/slog"
	"time"
)

var _ Asker = (*LoggingAsker)(nil)

// LoggingAsker wraps an Asker with structured logging of each call.
type LoggingAsker struct {
	next   Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped Asker and logs the outcome.
func (a *LoggingAsker) Ask(ctx context.Context, question string) (*AskResponse, error) {
	begin := time.Now()
	resp, err := a.next.Ask(ctx, question)
	duration := time.Since(begin)

	if err != nil {
		a.logger.Error("ask",
			"question_len", len(question),
			"error_type", TypeOf(err).String(),
			"duration", duration,
			"err", err,
		)
		return resp, err
	}

	sources := 0
	if resp != nil {
		sources = len(resp.Sources)
	}
	a.logger.Info("ask",
		"question_len", len(question),
		"answered", resp.HasAnswer(),
		"sources", sources,
		"duration", duration,
	)
	return resp, nil
}
