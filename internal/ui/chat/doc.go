// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view for the docmind TUI.

# Key Components

## Model (model.go)

The Bubble Tea model. It holds no transcript of its own: the
conversation.Controller owns the turns and the pending state, and the model
renders whatever the controller reports.

## Input (input.go)

The single-line question buffer. Submit is gated on the pending state and on
non-blank text. Enter submits; Alt+Enter is reserved and does nothing.

## Follow (follow.go)

The post-append hook handed to the controller. Every append raises a flag
that the model consumes on its next render to scroll to the newest turn.

# Message Flow

	Enter -> Input.Submit -> Controller.Begin -> fetch Cmd (goroutine)
	      -> AnswerMsg -> Controller.Complete -> re-render

Health checks run at start and every api.health_interval, updating the
header indicator.
*/
package chat
