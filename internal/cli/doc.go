// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the docmind command line.
//
// Commands:
//
//	docmind [tui]                  Full-screen chat (default)
//	docmind ask <question>         Ask one question and print the answer
//	docmind chat                   Line-based chat with history
//	docmind status                 Check the documentation service
//	docmind init                   Build the service's knowledge base
//	docmind history                List logged questions
//	docmind export <questions...>  Ask questions and export the conversation
//	docmind auth <subcommand>      Local account and two-factor codes
//	docmind config show|path       Show configuration
//	docmind version                Version information
//
// Run parses arguments with kong, wires Dependencies from configuration and
// dispatches to the command's Run method. Commands write to the injected
// Stdout/Stderr so tests can drive them with buffers.
package cli
