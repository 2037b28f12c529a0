// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package supervisor wires the process into a suture v4 supervision tree.

The tree has three child supervisors under one root:

	tunegraph
	├── pipeline-layer   scheduled enrichment runs
	├── serving-layer    snapshot refresher
	└── api-layer        HTTP server

Each layer restarts its own services with exponential backoff; a panic in
one layer never propagates to its siblings. Supervision events are logged
through sutureslog, bridged into zerolog by logging.NewSlogLogger.

Services live in the services subpackage and implement suture.Service:
Serve(ctx) that blocks until the context ends, plus String() for log
identification.
*/
package supervisor
