// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufSecurityLogger(buf *bytes.Buffer) *SecurityLogger {
	return NewSecurityLoggerWithLogger(zerolog.New(buf))
}

func TestLogLoginSuccess_MasksUsername(t *testing.T) {
	var buf bytes.Buffer
	sl := newBufSecurityLogger(&buf)

	sl.LogLoginSuccess("admin", "10.1.2.3", "curl/8.0")

	fields := decodeLine(t, buf.Bytes())
	if fields["event"] != "login_success" {
		t.Errorf("event = %v", fields["event"])
	}
	if fields["username"] != "ad***" {
		t.Errorf("username = %v, want ad***", fields["username"])
	}
	if fields["ip"] != "10.1.2.3" {
		t.Errorf("ip = %v", fields["ip"])
	}
	if fields["component"] != "auth" {
		t.Errorf("component = %v, want auth", fields["component"])
	}
	if strings.Contains(buf.String(), `"admin"`) {
		t.Error("full username reached the log")
	}
}

func TestLogLoginFailure_ScrubsReason(t *testing.T) {
	var buf bytes.Buffer
	sl := newBufSecurityLogger(&buf)

	sl.LogLoginFailure("admin", "10.1.2.3", "curl/8.0", "wrong password supplied")

	fields := decodeLine(t, buf.Bytes())
	if fields["level"] != "warn" {
		t.Errorf("level = %v, want warn", fields["level"])
	}
	if fields["event"] != "login_failed" {
		t.Errorf("event = %v", fields["event"])
	}
	if fields["reason"] != "authentication error" {
		t.Errorf("reason = %v, want scrubbed", fields["reason"])
	}
	if strings.Contains(buf.String(), "password") {
		t.Error("sensitive reason text reached the log")
	}
}

func TestLogTokenRejected(t *testing.T) {
	var buf bytes.Buffer
	sl := newBufSecurityLogger(&buf)

	sl.LogTokenRejected("10.1.2.3", "/api/v1/recommend", "signature is invalid")

	fields := decodeLine(t, buf.Bytes())
	if fields["event"] != "token_rejected" {
		t.Errorf("event = %v", fields["event"])
	}
	if fields["path"] != "/api/v1/recommend" {
		t.Errorf("path = %v", fields["path"])
	}
	if fields["reason"] != "signature is invalid" {
		t.Errorf("reason = %v, want passed through", fields["reason"])
	}
}

func TestMaskUsername(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "***"},
		{"ab", "***"},
		{"abc", "ab***"},
		{"operator", "op***"},
	}
	for _, tt := range tests {
		if got := maskUsername(tt.in); got != tt.want {
			t.Errorf("maskUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScrubReason(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"token text", "token contains an invalid number of segments", "authentication error"},
		{"bearer text", "malformed Bearer header", "authentication error"},
		{"plain text", "account locked", "account locked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrubReason(tt.in); got != tt.want {
				t.Errorf("scrubReason(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateUserAgent(t *testing.T) {
	var buf bytes.Buffer
	sl := newBufSecurityLogger(&buf)

	long := strings.Repeat("x", 300)
	sl.LogLoginSuccess("admin", "10.1.2.3", long)

	fields := decodeLine(t, buf.Bytes())
	ua, _ := fields["user_agent"].(string)
	if len(ua) != 103 || !strings.HasSuffix(ua, "...") {
		t.Errorf("user agent not truncated: len=%d", len(ua))
	}
}
