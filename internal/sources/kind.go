// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the known documentation source a tool label refers to.
type Kind int

const (
	// KindGeneric is the default for any label not listed below.
	KindGeneric Kind = iota
	KindStripe
	KindTailwind
	KindReact
	KindNextJS
	KindVercel
)

// kindsByLabel maps lower-cased tool labels to their kind.
var kindsByLabel = map[string]Kind{
	"stripe":      KindStripe,
	"tailwind":    KindTailwind,
	"tailwindcss": KindTailwind,
	"react":       KindReact,
	"nextjs":      KindNextJS,
	"next.js":     KindNextJS,
	"vercel":      KindVercel,
}

// KindOf resolves a tool label. Matching is case-insensitive and ignores
// surrounding whitespace.
func KindOf(tool string) Kind {
	if k, ok := kindsByLabel[strings.ToLower(strings.TrimSpace(tool))]; ok {
		return k
	}
	return KindGeneric
}

// String returns the canonical lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStripe:
		return "stripe"
	case KindTailwind:
		return "tailwind"
	case KindReact:
		return "react"
	case KindNextJS:
		return "nextjs"
	case KindVercel:
		return "vercel"
	default:
		return "generic"
	}
}

// DefaultToolLabel is shown for citations whose tool label is empty.
const DefaultToolLabel = "Docs"

// DisplayLabel capitalizes the first letter of each word of a tool label.
// Display casing never affects grouping.
func DisplayLabel(tool string) string {
	tool = strings.TrimSpace(tool)
	if tool == "" {
		return DefaultToolLabel
	}
	// Casers carry state, so one is built per call.
	return cases.Title(language.Und, cases.NoLower).String(tool)
}
