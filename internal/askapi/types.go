// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"strings"

	"github.com/jeranaias/docmind-tui/internal/model"
)

// Asker answers one question. Implemented by Client and LoggingAsker.
type Asker interface {
	Ask(ctx context.Context, question string) (*AskResponse, error)
}

// AskRequest is the request body for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the decoded body of a successful /ask call.
// Sources is nil when the service sent none.
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []model.Citation `json:"sources,omitempty"`
}

// HasAnswer reports whether the service produced non-blank answer text.
func (r *AskResponse) HasAnswer() bool {
	return r != nil && strings.TrimSpace(r.Answer) != ""
}

// MessageResponse is the body returned by GET / and POST /initialize.
type MessageResponse struct {
	Message string `json:"message"`
}
