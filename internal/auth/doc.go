// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package auth provides JWT authentication for the API server.

The package supports two modes selected by AUTH_MODE:

  - none: all requests pass through unauthenticated (default for local use)
  - jwt: protected routes require a valid bearer token

Login flow:

 1. POST /api/v1/auth/login with username and password
 2. CredentialVerifier checks them against ADMIN_USERNAME and the bcrypt
    ADMIN_PASSWORD_HASH
 3. JWTManager issues an HS256 token valid for SESSION_TIMEOUT
 4. Subsequent requests send the token as "Authorization: Bearer <token>"
    or in a "token" cookie

Tokens are stateless; there is no server-side revocation before expiry.
Failed logins and rejected tokens are recorded through the security logger
with usernames and tokens masked.

Rate limiting and CORS are handled at the router by httprate and go-chi/cors
rather than in this package.
*/
package auth
