// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// PopularTopics are suggested starting questions.
var PopularTopics = []string{
	"API Authentication & Security",
	"Webhook Integration Patterns",
	"Rate Limiting & Throttling",
	"Error Handling Best Practices",
	"SDK Usage Examples",
	"Payment Processing Flows",
}
