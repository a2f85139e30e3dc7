// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2-SHA256 work factor for new passwords.
	DefaultIterations = 210_000

	// MinPasswordLength is enforced at sign-up.
	MinPasswordLength = 8

	saltLen = 16
	keyLen  = 32
)

// hashPassword derives a key from password with a fresh random salt.
func hashPassword(password string, iterations int) (hash, salt []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return derive(password, salt, iterations), salt, nil
}

// verifyPassword compares in constant time.
func verifyPassword(password string, hash, salt []byte, iterations int) bool {
	if iterations <= 0 || len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(derive(password, salt, iterations), hash) == 1
}

func derive(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}
