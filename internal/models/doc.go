// Package models defines the records that flow from the playlist provider into the schedule builder.
//
// The package contains two categories of types:
//
// 1. Fetched records: immutable data as returned by the upstream provider
//   - [Artist] : Credited performer, display name only
//   - [RawTrack] : Track identifier, title, artists and duration in milliseconds
//   - [FeatureRecord] : Audio features for a track, with an optional tempo
//   - [Playlist] : Playlist metadata for summaries
//
// 2. Cached aggregates
//   - [Snapshot] : A playlist together with all of its tracks and feature records
//
// Records implement [Validator] so that malformed data is rejected at the fetch boundary instead of reaching the schedule builder.
package models
