// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger records authentication events: login attempts against the
// admin account and rejected tokens on protected routes. Usernames are
// masked and failure reasons scrubbed before they reach the log.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWithLogger(Logger())
}

// NewSecurityLoggerWithLogger creates a security logger on the given logger.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogLoginSuccess records a successful login.
func (l *SecurityLogger) LogLoginSuccess(username, ip, userAgent string) {
	l.logger.Info().
		Str("event", "login_success").
		Str("username", maskUsername(username)).
		Str("ip", ip).
		Str("user_agent", truncate(userAgent, 100)).
		Msg("login succeeded")
}

// LogLoginFailure records a failed login attempt.
func (l *SecurityLogger) LogLoginFailure(username, ip, userAgent, reason string) {
	l.logger.Warn().
		Str("event", "login_failed").
		Str("username", maskUsername(username)).
		Str("ip", ip).
		Str("user_agent", truncate(userAgent, 100)).
		Str("reason", scrubReason(reason)).
		Msg("login failed")
}

// LogTokenRejected records a request that carried a missing, invalid or
// expired token.
func (l *SecurityLogger) LogTokenRejected(ip, path, reason string) {
	l.logger.Warn().
		Str("event", "token_rejected").
		Str("ip", ip).
		Str("path", path).
		Str("reason", scrubReason(reason)).
		Msg("token rejected")
}

// maskUsername keeps the first two characters so operators can correlate
// attempts without the log holding full account names.
func maskUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// scrubReason replaces any reason that might echo credential material. JWT
// parse errors can quote parts of the token.
func scrubReason(reason string) string {
	lower := strings.ToLower(reason)
	for _, word := range []string{"password", "secret", "token", "bearer", "authorization", "cookie"} {
		if strings.Contains(lower, word) {
			return "authentication error"
		}
	}
	return truncate(reason, 200)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
