// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "errors"

var (
	// ErrNoQuestion is returned when a command needs a question and got none.
	ErrNoQuestion = errors.New("no question given")

	// ErrServiceOffline is returned by status when the service is unreachable.
	ErrServiceOffline = errors.New("documentation service is offline")

	// ErrAskFailed is returned after the connection error answer was printed.
	ErrAskFailed = errors.New("could not reach the documentation service")

	// ErrNotTerminal is returned by tui when stdout is not a terminal.
	ErrNotTerminal = errors.New("the chat interface needs a terminal; use ask or chat instead")

	// ErrPasswordMismatch is returned by signup when confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
)
