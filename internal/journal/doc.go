// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

/*
Package journal persists ingested users, products and interactions to
BadgerDB so the engine can rebuild its in-memory state on start-up.

The journal is append-only. Every record is stored under a key built from a
monotonically increasing badger sequence, so a prefix scan returns records
in ingestion order:

	j/<8-byte big-endian sequence> -> JSON Entry{ID, Seq, Record, CreatedAt}

Only raw ingestion input is stored. Similarity caches, profiles and trained
factor matrices are derived state and are rebuilt after replay.

# Usage

	j, err := journal.Open(journal.DefaultConfig(), logger)
	if err != nil {
	    return err
	}
	defer j.Close()

	err = j.Replay(ctx, func(e *journal.Entry) error {
	    return engine.Apply(e.Record)
	})

Tests use Config{InMemory: true}.

# Thread Safety

Append, Replay and Len are safe for concurrent use. Close waits for nothing;
callers stop writers first.
*/
package journal
