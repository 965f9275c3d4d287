// Package repositories implements the SQLite fetch cache for raw playlist data.
//
// A snapshot is everything fetched for one playlist: metadata, tracks in playlist order and
// the tempo of every track that had audio features. Snapshots are keyed by playlist ID and a
// new save replaces the previous one, so the cache never holds more than one per playlist.
//
// Key Implementations:
//   - [SnapshotRepository] : Save, Get, List, Delete and Purge over the snapshots and snapshot_tracks tables
//   - [SnapshotCache] : TTL lookups and fire-and-forget stores for the analyzer; storage errors are logged, never returned
//
// Sequence numbers provide stable, human-readable ordering (e.g., snapshot #15) independent of UUIDs and fetch timestamps.
// [NextSequence] bumps the per-table counter inside the caller's transaction.
//
// Only raw upstream data is stored. Schedules are always recomputed from it.
package repositories
