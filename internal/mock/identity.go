// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mock

import "github.com/jeranaias/docmind-tui/internal/identity"

var _ identity.Provider = (*IdentityProvider)(nil)

// IdentityProvider is a mock implementation of identity.Provider.
type IdentityProvider struct {
	CurrentFn func() *identity.Identity
}

func (p *IdentityProvider) Current() *identity.Identity {
	return p.CurrentFn()
}
