// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a stored local account. Password material is opaque here; the
// identity package owns hashing.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	Salt         []byte
	Iterations   int
	TOTPSecret   string
	CreatedAt    time.Time
}

// TOTPEnabled reports whether a second factor is enrolled.
func (a *Account) TOTPEnabled() bool {
	return a.TOTPSecret != ""
}

// AccountStore persists accounts.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates an AccountStore on an open DB.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create inserts a new account, assigning ID and CreatedAt.
// Emails are unique case-insensitively; a duplicate returns ErrAccountExists.
func (s *AccountStore) Create(ctx context.Context, a *Account) error {
	conn, err := s.db.conn()
	if err != nil {
		return err
	}
	if strings.TrimSpace(a.Email) == "" {
		return errors.New("email is required")
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	_, err = conn.ExecContext(ctx, `
		INSERT INTO accounts (id, email, display_name, password_hash, salt, iterations, totp_secret, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.DisplayName, a.PasswordHash, a.Salt, a.Iterations, a.TOTPSecret,
		a.CreatedAt.Format(timestampLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrAccountExists, a.Email)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindByEmail looks an account up case-insensitively.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, "email = ?", email)
}

// FindByID looks an account up by ID.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.findOne(ctx, "id = ?", id)
}

// SetTOTPSecret enrolls (or with an empty secret, removes) the second factor.
func (s *AccountStore) SetTOTPSecret(ctx context.Context, id, secret string) error {
	conn, err := s.db.conn()
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, "UPDATE accounts SET totp_secret = ? WHERE id = ?", secret, id)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountStore) findOne(ctx context.Context, cond string, arg any) (*Account, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	var a Account
	var createdAt string
	err = conn.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, salt, iterations, totp_secret, created_at
		FROM accounts WHERE `+cond, arg).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Salt, &a.Iterations, &a.TOTPSecret, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if a.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", createdAt, err)
	}
	return &a, nil
}
