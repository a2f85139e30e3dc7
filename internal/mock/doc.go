// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mock provides function-field test doubles for docmind interfaces.
//
// Each mock calls the matching Fn field; leaving a field nil panics so a
// test notices an unexpected call.
package mock
