// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import "time"

// =============================================================================
// ORIGIN TYPE
// =============================================================================

// Origin identifies who authored a turn.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	return string(o)
}

// DisplayName returns a human-readable name for the origin.
func (o Origin) DisplayName() string {
	switch o {
	case OriginUser:
		return "You"
	case OriginAssistant:
		return "DocuMind AI"
	default:
		return string(o)
	}
}

// Valid reports whether o is one of the two known origins.
func (o Origin) Valid() bool {
	return o == OriginUser || o == OriginAssistant
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a grounding reference returned alongside an answer.
// Every field is optional on the wire.
type Citation struct {
	Tool    string `json:"tool,omitempty"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// HasURL reports whether the citation can be followed and deduplicated.
func (c Citation) HasURL() bool {
	return c.URL != ""
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one entry in the transcript.
type Turn struct {
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	Origin    Origin     `json:"origin"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Origin == OriginUser
}

// IsAssistant reports whether the turn was authored by the assistant.
func (t Turn) IsAssistant() bool {
	return t.Origin == OriginAssistant
}

// HasCitations reports whether the turn carries any citations.
func (t Turn) HasCitations() bool {
	return len(t.Citations) > 0
}

// clone returns a copy that shares no memory with t.
func (t Turn) clone() Turn {
	if t.Citations != nil {
		t.Citations = append([]Citation(nil), t.Citations...)
	}
	return t
}
