// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mock

import (
	"context"

	"github.com/jeranaias/docmind-tui/internal/askapi"
)

var _ askapi.Asker = (*Asker)(nil)

// Asker is a mock implementation of askapi.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*askapi.AskResponse, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*askapi.AskResponse, error) {
	return a.AskFn(ctx, question)
}
