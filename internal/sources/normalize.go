// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import "github.com/jeranaias/docmind-tui/internal/model"

// Group is the citations of one tool, in original order.
type Group struct {
	Tool      string
	Citations []model.Citation
}

// Dedupe drops citations without a URL and removes later citations whose URL
// was already seen. Relative order of the survivors is preserved. The input
// is never modified. Returns nil when nothing survives.
func Dedupe(in []model.Citation) []model.Citation {
	var out []model.Citation
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		if !c.HasURL() {
			continue
		}
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Normalize deduplicates in and groups the result by tool. Grouping is
// case-sensitive on the label as authored; groups appear in the order their
// tool was first seen.
func Normalize(in []model.Citation) []Group {
	deduped := Dedupe(in)
	if len(deduped) == 0 {
		return nil
	}

	var groups []Group
	index := make(map[string]int)
	for _, c := range deduped {
		i, ok := index[c.Tool]
		if !ok {
			i = len(groups)
			index[c.Tool] = i
			groups = append(groups, Group{Tool: c.Tool})
		}
		groups[i].Citations = append(groups[i].Citations, c)
	}
	return groups
}

// Tools returns the distinct tool labels of the normalized list in
// first-seen order.
func Tools(in []model.Citation) []string {
	groups := Normalize(in)
	tools := make([]string, 0, len(groups))
	for _, g := range groups {
		tools = append(tools, g.Tool)
	}
	return tools
}

// Count returns the number of citations that survive normalization.
func Count(in []model.Citation) int {
	return len(Dedupe(in))
}
