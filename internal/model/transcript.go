// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Transcript is the ordered, append-only history of turns for one chat view.
//
// Transcript is not safe for concurrent use; its owner serializes access.
type Transcript struct {
	turns []Turn
	now   func() time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// IsEmpty reports whether the transcript has no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}

// AppendUser appends a user turn. Citations are never attached to user turns.
func (t *Transcript) AppendUser(text string) Turn {
	return t.append(Turn{Text: text, Origin: OriginUser})
}

// AppendAssistant appends an assistant turn with an optional citation list.
// The citation slice is copied; an empty list is stored as nil.
func (t *Transcript) AppendAssistant(text string, citations []Citation) Turn {
	turn := Turn{Text: text, Origin: OriginAssistant}
	if len(citations) > 0 {
		turn.Citations = append([]Citation(nil), citations...)
	}
	return t.append(turn)
}

func (t *Transcript) append(turn Turn) Turn {
	turn.ID = len(t.turns) + 1
	if t.now != nil {
		turn.CreatedAt = t.now()
	}
	t.turns = append(t.turns, turn)
	return turn.clone()
}

// Turns returns a snapshot of every turn in display order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	for i, turn := range t.turns {
		out[i] = turn.clone()
	}
	return out
}

// Last returns the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1].clone(), true
}

// LastAssistant returns the most recent assistant turn.
func (t *Transcript) LastAssistant() (Turn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Origin == OriginAssistant {
			return t.turns[i].clone(), true
		}
	}
	return Turn{}, false
}
