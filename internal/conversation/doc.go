// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the chat transcript and the question/answer
// cycle.
//
// A Controller accepts a question only when it is non-blank and no other
// question is in flight. Each accepted question appends a user turn, sends
// exactly one request, records a fire-and-forget query log entry and, when
// the request resolves, appends exactly one assistant turn: the answer with
// its deduplicated citations, a fallback when the answer is missing, or a
// fixed connection message when the request failed. Errors never escape the
// controller; they become assistant turns and log lines.
//
// # Event loops
//
// The cycle is split so that a UI event loop never blocks on the network:
//
//	req, ok := ctrl.Begin(text)      // on the loop: gate + user turn
//	res := ctrl.Fetch(ctx, req)      // off the loop: the HTTP call
//	turn := ctrl.Complete(res)       // on the loop: assistant turn
//
// SubmitQuestion runs all three in sequence for callers that may block.
//
// After every transcript append the controller calls the OnAppend hook
// synchronously, which is how views keep the newest turn in sight.
package conversation
