// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity tracks who is using docmind.
//
// The chat flow only ever asks one question of this package: who, if
// anyone, is signed in right now? Provider answers it. LocalProvider adds
// sign-up, sign-in and sign-out against local accounts, with an optional
// TOTP second factor. Anonymous use is always allowed.
package identity

import (
	"errors"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrTOTPRequired       = errors.New("one-time code required")
	ErrNotSignedIn        = errors.New("not signed in")
)

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is the signed-in user as seen by the rest of docmind.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	TOTPEnabled bool   `json:"totp_enabled,omitempty"`
}

// Name returns the display name, falling back to the email.
func (i *Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}

// Provider reports the current identity. Current returns nil when nobody is
// signed in, and must be safe to call from any goroutine.
type Provider interface {
	Current() *Identity
}

// IDOf returns the ID of the provider's current identity, or "" when p is
// nil or nobody is signed in.
func IDOf(p Provider) string {
	if p == nil {
		return ""
	}
	if id := p.Current(); id != nil {
		return id.ID
	}
	return ""
}

// Static is a Provider with a fixed answer. The zero value is anonymous.
type Static struct {
	mu       sync.RWMutex
	identity *Identity
}

// NewStatic returns a Provider that always reports id.
func NewStatic(id *Identity) *Static {
	return &Static{identity: id}
}

// Current returns a copy of the held identity.
func (s *Static) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.identity)
}

// Set replaces the held identity.
func (s *Static) Set(id *Identity) {
	s.mu.Lock()
	s.identity = clone(id)
	s.mu.Unlock()
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
