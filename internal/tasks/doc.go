// Package tasks runs playlist analyses with real-time progress reporting.
//
// # Core Operations
//
//  1. [Analyzer.Analyze] : one playlist to one schedule
//     - Resolves the reference with [services.ParsePlaylistID]; a bad reference fails before any request
//     - Reuses a cached snapshot younger than the configured max age, unless the request asks for a refresh
//     - Otherwise fetches playlist metadata, tracks and audio features, then stores the snapshot
//     - Assembles rows and stats with [schedule.Assemble]
//
//  2. [Analyzer.BulkExport] : many playlists to one file each
//     - Worker pool fed through a rate limiter
//     - Partial failures are recorded per playlist and summarized in export_manifest.json
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Failure Policy
//
// Any fetch error aborts the analysis of that playlist. Rows are never assembled from partial data,
// and nothing is written to the cache.
//
// # Start Times
//
// [ResolveStart] turns user input into a start moment. Missing values default to the next Saturday at 20:30.
package tasks
