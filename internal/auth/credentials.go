// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tunegraph/tunegraph/internal/config"
)

// ErrInvalidCredentials is returned for any username or password mismatch.
// Callers must not distinguish which part failed.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

// CredentialVerifier validates the admin username and password against the
// configured bcrypt hash. The hash is produced offline, for example with
// htpasswd -bnBC 12 "" password.
type CredentialVerifier struct {
	username     string
	passwordHash []byte
}

// NewCredentialVerifier creates a verifier from security configuration.
func NewCredentialVerifier(cfg *config.SecurityConfig) (*CredentialVerifier, error) {
	if cfg.AdminUsername == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("admin password hash is required")
	}
	if !strings.HasPrefix(cfg.AdminPasswordHash, "$2") {
		return nil, fmt.Errorf("admin password hash must be a bcrypt hash")
	}

	return &CredentialVerifier{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
	}, nil
}

// Verify checks a username and password pair. Both comparisons always run so
// response timing does not reveal whether the username matched.
func (v *CredentialVerifier) Verify(username, password string) error {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	// bcrypt.CompareHashAndPassword is timing-safe by design.
	passwordMatch := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil

	if !usernameMatch || !passwordMatch {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
// Cost 12 balances login latency against brute-force resistance.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
