// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sources normalizes the citation lists returned with answers.
//
// Normalization drops citations without a URL, deduplicates by URL keeping
// the first occurrence, and groups the survivors by tool label in first-seen
// order:
//
//	groups := sources.Normalize(turn.Citations)
//	for _, g := range groups {
//	    fmt.Println(sources.DisplayLabel(g.Tool), len(g.Citations))
//	}
//
// Tool labels are free-form. Kind maps them onto a fixed set of known
// documentation sources for icon and colour lookup; unknown labels fall back
// to KindGeneric.
package sources
