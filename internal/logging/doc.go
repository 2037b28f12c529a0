// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package logging configures the process-wide zerolog logger.

The logger works with defaults before main runs; main calls Init once the
configuration is loaded:

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

Components derive child loggers with their own component field:

	logger := logging.Logger().With().Str("component", "pipeline").Logger()

Request-scoped IDs travel through the context: the request-ID middleware
calls ContextWithRequestID and ContextWithNewCorrelationID, and handlers
read them back with the matching FromContext functions.

SecurityLogger records login attempts and token rejections with usernames
masked and failure reasons scrubbed of credential material.

NewSlogLogger bridges into log/slog for the suture supervisor, whose
sutureslog hook only speaks slog.
*/
package logging
