// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docmind-tui/internal/storage"
)

func newTestProvider(t *testing.T, sessionPath string) (*LocalProvider, *storage.AccountStore) {
	t.Helper()
	db := storage.NewDB(storage.MemoryPath)
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	accounts := storage.NewAccountStore(db)
	p, err := NewLocalProvider(context.Background(), accounts, sessionPath, WithIterations(1000))
	require.NoError(t, err)
	return p, accounts
}

// =============================================================================
// PROVIDER TESTS
// =============================================================================

func TestIDOf(t *testing.T) {
	assert.Equal(t, "", IDOf(nil))
	assert.Equal(t, "", IDOf(&Static{}))
	assert.Equal(t, "u1", IDOf(NewStatic(&Identity{ID: "u1"})))
}

func TestStaticReturnsCopies(t *testing.T) {
	s := NewStatic(&Identity{ID: "u1", Email: "a@b.c"})

	got := s.Current()
	got.Email = "changed"

	assert.Equal(t, "a@b.c", s.Current().Email)

	s.Set(nil)
	assert.Nil(t, s.Current())
}

func TestIdentityName(t *testing.T) {
	assert.Equal(t, "Ada", (&Identity{Email: "ada@example.com", DisplayName: "Ada"}).Name())
	assert.Equal(t, "ada@example.com", (&Identity{Email: "ada@example.com"}).Name())
}

// =============================================================================
// SIGN-UP / SIGN-IN TESTS
// =============================================================================

func TestSignUpSignsIn(t *testing.T) {
	p, _ := newTestProvider(t, "")
	assert.Nil(t, p.Current())

	id, err := p.SignUp(context.Background(), "  Ada@Example.com ", "correct horse", "Ada")

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	require.NotNil(t, p.Current())
	assert.Equal(t, id.ID, p.Current().ID)
}

func TestSignUpValidation(t *testing.T) {
	p, _ := newTestProvider(t, "")
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "correct horse", "")
	assert.Error(t, err)

	_, err = p.SignUp(ctx, "ada@example.com", "short", "")
	assert.Error(t, err)

	_, err = p.SignUp(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "ADA@example.com", "another pass", "")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignIn(t *testing.T) {
	p, _ := newTestProvider(t, "")
	ctx := context.Background()
	_, err := p.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	require.NoError(t, p.SignOut())
	assert.Nil(t, p.Current())

	_, err = p.SignIn(ctx, "ada@example.com", "wrong password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, p.Current())

	_, err = p.SignIn(ctx, "nobody@example.com", "correct horse", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := p.SignIn(ctx, "ADA@example.com", "correct horse", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada", id.Name())
	assert.Equal(t, id.ID, IDOf(p))
}

func TestSignOutWhenAnonymous(t *testing.T) {
	p, _ := newTestProvider(t, filepath.Join(t.TempDir(), "session.json"))
	assert.NoError(t, p.SignOut())
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSessionSurvivesRestart(t *testing.T) {
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	p, accounts := newTestProvider(t, sessionPath)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	info, err := os.Stat(sessionPath)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	restored, err := NewLocalProvider(ctx, accounts, sessionPath)
	require.NoError(t, err)
	require.NotNil(t, restored.Current())
	assert.Equal(t, id.ID, restored.Current().ID)

	require.NoError(t, restored.SignOut())
	_, err = os.Stat(sessionPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStaleSessionIsDiscarded(t *testing.T) {
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(sessionPath, []byte(`{"id":"gone","email":"x@y.z"}`), 0600))

	p, _ := newTestProvider(t, sessionPath)

	assert.Nil(t, p.Current())
	_, err := os.Stat(sessionPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptSessionIsDiscarded(t *testing.T) {
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(sessionPath, []byte(`{not json`), 0600))

	p, _ := newTestProvider(t, sessionPath)

	assert.Nil(t, p.Current())
}

// =============================================================================
// TOTP TESTS
// =============================================================================

func TestTOTPFlow(t *testing.T) {
	p, _ := newTestProvider(t, "")
	ctx := context.Background()

	_, err := p.GenerateTOTP()
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = p.SignUp(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)

	key, err := p.GenerateTOTP()
	require.NoError(t, err)
	assert.Equal(t, TOTPIssuer, key.Issuer())
	assert.Equal(t, "ada@example.com", key.AccountName())

	assert.ErrorIs(t, p.EnableTOTP(ctx, key.Secret(), "000000x"), ErrInvalidCredentials)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	require.NoError(t, p.EnableTOTP(ctx, key.Secret(), code))
	assert.True(t, p.Current().TOTPEnabled)

	require.NoError(t, p.SignOut())

	_, err = p.SignIn(ctx, "ada@example.com", "correct horse", "")
	assert.ErrorIs(t, err, ErrTOTPRequired)

	_, err = p.SignIn(ctx, "ada@example.com", "correct horse", "12345x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	code, err = totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	id, err := p.SignIn(ctx, "ada@example.com", "correct horse", code)
	require.NoError(t, err)
	assert.True(t, id.TOTPEnabled)

	assert.ErrorIs(t, p.DisableTOTP(ctx, "wrong password"), ErrInvalidCredentials)
	require.NoError(t, p.DisableTOTP(ctx, "correct horse"))
	assert.False(t, p.Current().TOTPEnabled)
}

func TestPasswordHashing(t *testing.T) {
	hash, salt, err := hashPassword("secret-pass", 1000)
	require.NoError(t, err)
	assert.Len(t, hash, keyLen)
	assert.Len(t, salt, saltLen)

	assert.True(t, verifyPassword("secret-pass", hash, salt, 1000))
	assert.False(t, verifyPassword("secret-pasS", hash, salt, 1000))
	assert.False(t, verifyPassword("secret-pass", hash, salt, 999))
	assert.False(t, verifyPassword("secret-pass", nil, salt, 1000))

	hash2, salt2, err := hashPassword("secret-pass", 1000)
	require.NoError(t, err)
	assert.NotEqual(t, salt, salt2)
	assert.NotEqual(t, hash, hash2)
}
