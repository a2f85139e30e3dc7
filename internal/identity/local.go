// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/docmind-tui/internal/storage"
	"github.com/jeranaias/docmind-tui/internal/util"
)

// TOTPIssuer labels enrolled codes in authenticator apps.
const TOTPIssuer = "DocuMind"

// session is the on-disk form of the signed-in identity.
type session struct {
	Identity
	SignedInAt time.Time `json:"signed_in_at"`
}

// LocalProvider authenticates against accounts in the local database and
// remembers the signed-in identity across runs in a session file.
type LocalProvider struct {
	accounts    *storage.AccountStore
	sessionPath string
	iterations  int
	logger      *slog.Logger

	mu      sync.RWMutex
	current *Identity
}

var _ Provider = (*LocalProvider)(nil)

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithIterations overrides the PBKDF2 work factor for new passwords.
func WithIterations(n int) LocalOption {
	return func(p *LocalProvider) { p.iterations = n }
}

// WithLogger sets the logger for authentication events.
func WithLogger(l *slog.Logger) LocalOption {
	return func(p *LocalProvider) { p.logger = l }
}

// NewLocalProvider creates a provider and restores any saved session.
// An empty sessionPath keeps the session in memory only. A session whose
// account no longer exists is discarded.
func NewLocalProvider(ctx context.Context, accounts *storage.AccountStore, sessionPath string, opts ...LocalOption) (*LocalProvider, error) {
	p := &LocalProvider{
		accounts:    accounts,
		sessionPath: sessionPath,
		iterations:  DefaultIterations,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	if sessionPath == "" {
		return p, nil
	}

	data, err := os.ReadFile(sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		p.logger.Warn("discarding unreadable session", "path", sessionPath, "err", err)
		_ = os.Remove(sessionPath)
		return p, nil
	}

	acct, err := accounts.FindByID(ctx, s.ID)
	if err != nil {
		p.logger.Warn("discarding stale session", "identity_id", s.ID, "err", err)
		_ = os.Remove(sessionPath)
		return p, nil
	}
	p.current = identityOf(acct)
	return p, nil
}

// Current returns the signed-in identity or nil.
func (p *LocalProvider) Current() *Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.current)
}

// =============================================================================
// ACCOUNT LIFECYCLE
// =============================================================================

// SignUp creates an account and signs it in.
func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hash, salt, err := hashPassword(password, p.iterations)
	if err != nil {
		return nil, err
	}

	acct := &storage.Account{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Salt:         salt,
		Iterations:   p.iterations,
	}
	if err := p.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	p.logger.Info("account created", "identity_id", acct.ID)
	return p.setCurrent(identityOf(acct))
}

// SignIn checks credentials and signs the account in. Accounts with TOTP
// enabled need a valid code: an empty code returns ErrTOTPRequired and a
// wrong one ErrInvalidCredentials.
func (p *LocalProvider) SignIn(ctx context.Context, email, password, code string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	acct, err := p.accounts.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("sign-in failed", "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !verifyPassword(password, acct.PasswordHash, acct.Salt, acct.Iterations) {
		p.logger.Warn("sign-in failed", "identity_id", acct.ID, "reason", "password")
		return nil, ErrInvalidCredentials
	}

	if acct.TOTPEnabled() {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, ErrTOTPRequired
		}
		if !totp.Validate(code, acct.TOTPSecret) {
			p.logger.Warn("sign-in failed", "identity_id", acct.ID, "reason", "totp")
			return nil, ErrInvalidCredentials
		}
	}

	p.logger.Info("signed in", "identity_id", acct.ID)
	return p.setCurrent(identityOf(acct))
}

// SignOut forgets the current identity. Signing out while anonymous is not
// an error.
func (p *LocalProvider) SignOut() error {
	p.mu.Lock()
	prev := p.current
	p.current = nil
	p.mu.Unlock()

	if prev != nil {
		p.logger.Info("signed out", "identity_id", prev.ID)
	}
	if p.sessionPath == "" {
		return nil
	}
	if err := os.Remove(p.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// =============================================================================
// TOTP
// =============================================================================

// GenerateTOTP creates a new secret for the current identity. Nothing is
// stored until EnableTOTP confirms a code from it.
func (p *LocalProvider) GenerateTOTP() (*otp.Key, error) {
	cur := p.Current()
	if cur == nil {
		return nil, ErrNotSignedIn
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: cur.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	return key, nil
}

// EnableTOTP stores secret for the current identity once code validates
// against it.
func (p *LocalProvider) EnableTOTP(ctx context.Context, secret, code string) error {
	cur := p.Current()
	if cur == nil {
		return ErrNotSignedIn
	}
	if !totp.Validate(strings.TrimSpace(code), secret) {
		return ErrInvalidCredentials
	}
	if err := p.accounts.SetTOTPSecret(ctx, cur.ID, secret); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	cur.TOTPEnabled = true
	_, err := p.setCurrent(cur)
	p.logger.Info("totp enabled", "identity_id", cur.ID)
	return err
}

// DisableTOTP removes the second factor after re-checking the password.
func (p *LocalProvider) DisableTOTP(ctx context.Context, password string) error {
	cur := p.Current()
	if cur == nil {
		return ErrNotSignedIn
	}
	acct, err := p.accounts.FindByID(ctx, cur.ID)
	if err != nil {
		return ErrNotFound
	}
	if !verifyPassword(password, acct.PasswordHash, acct.Salt, acct.Iterations) {
		return ErrInvalidCredentials
	}
	if err := p.accounts.SetTOTPSecret(ctx, cur.ID, ""); err != nil {
		return err
	}

	cur.TOTPEnabled = false
	_, err = p.setCurrent(cur)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *LocalProvider) setCurrent(id *Identity) (*Identity, error) {
	p.mu.Lock()
	p.current = clone(id)
	p.mu.Unlock()

	if p.sessionPath != "" {
		s := session{Identity: *id, SignedInAt: time.Now().UTC()}
		if err := util.AtomicWriteJSON(p.sessionPath, s, 0600); err != nil {
			return clone(id), fmt.Errorf("failed to save session: %w", err)
		}
	}
	return clone(id), nil
}

func identityOf(a *storage.Account) *Identity {
	return &Identity{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		TOTPEnabled: a.TOTPEnabled(),
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return email, nil
}
