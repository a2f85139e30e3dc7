// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync/atomic"

	"github.com/jeranaias/docmind-tui/internal/model"
)

// Follow records that the transcript grew. Pass OnAppend as the
// controller's post-append hook.
type Follow struct {
	appended atomic.Bool
}

// NewFollow creates a Follow with no pending append.
func NewFollow() *Follow {
	return &Follow{}
}

// OnAppend marks that a turn was appended.
func (f *Follow) OnAppend(model.Turn) {
	f.appended.Store(true)
}

// Take reports whether a turn was appended since the last call and resets
// the flag.
func (f *Follow) Take() bool {
	return f.appended.Swap(false)
}
