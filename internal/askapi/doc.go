// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package askapi provides the HTTP client for the documentation
// question-answering service.
//
// The service is opaque to docmind: it accepts a question and returns an
// answer with optional grounding sources. Three endpoints are used:
//
//   - POST /ask         question in, answer and sources out
//   - GET  /            health check (any 2xx means online)
//   - POST /initialize  asks the service to (re)build its knowledge base
//
// # Usage
//
//	client := askapi.NewClient(&askapi.Config{BaseURL: "http://127.0.0.1:8000"})
//	resp, err := client.Ask(ctx, "How do I verify webhook signatures?")
//	if err != nil {
//	    var ce *askapi.ClientError
//	    if errors.As(err, &ce) && ce.Type == askapi.ErrTypeStatus {
//	        // backend answered with a non-2xx status
//	    }
//	}
//
// A non-2xx response is a failure and its body is never parsed. A 2xx body
// that is not a JSON object is ErrTypeInvalidResponse. An object without a
// string answer yields an empty Answer and callers substitute their own
// fallback text; source entries that fail to decode are skipped.
package askapi
