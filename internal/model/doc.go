// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Turn: one transcript entry, authored by the user or the assistant
//   - Origin: who authored a Turn (user, assistant)
//   - Citation: a grounding reference attached to an assistant Turn
//   - Transcript: the ordered, append-only list of Turns for a session
//
// # Usage
//
//	t := model.NewTranscript()
//	q := t.AppendUser("How do I authenticate?")
//	a := t.AppendAssistant("Use an API key.", []model.Citation{
//	    {Tool: "api", Title: "Auth Guide", URL: "https://x/auth"},
//	})
//	fmt.Println(q.ID, a.ID) // 1 2
//
// Turn IDs are assigned as the transcript length at append time plus one,
// so IDs always match display order.
package model
