// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package pipeline runs the offline catalog enrichment pass.

One run performs, in order:

 1. Load the full track catalog from DuckDB
 2. Clean it (numeric bounds and outliers, text normalization)
 3. Quality-check the cleaned batch; failures are logged, never fatal
 4. Embed each track's metadata text through the embedding service
 5. Impute, scale and PCA-project the numeric attributes
 6. Fuse text and feature vectors into the combined embedding
 7. Write all vectors back in a single transaction
 8. Persist the fitted projector state and a run marker

Runs are triggered at startup (PIPELINE_RUN_ON_STARTUP), on a schedule
(PIPELINE_INTERVAL, supervised by the scheduler service) or indirectly via
the admin reload endpoint after external data loads.

The serving path never waits on a pipeline run; it keeps answering from the
last snapshot until the new vectors land in storage and a reload picks
them up.
*/
package pipeline
