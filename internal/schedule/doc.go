// Package schedule turns fetched playlist records into a time-annotated schedule.
//
// It is made of four pure parts:
//
//   - Formatter ([FormatDuration], [FormatClock], [JoinArtists], [FormatTotal], [FormatTempo]):
//     millisecond counts and timestamps to display strings
//   - Timing ([Cumulative], [ClockTimes], [Localize], [ApplyCrossfade]):
//     running offsets and wall-clock times, with date rollover past midnight
//   - Color scale ([ScaleColor]): maps a value inside an observed range onto a green → yellow → red gradient
//   - Assembler ([Assemble], [SortRows]): joins tracks, features, timing and colors into [Row] values and [Stats]
//
// Nothing here performs I/O or returns an error. Absent tempos, empty playlists and
// degenerate ranges are ordinary values. Rows are rebuilt wholesale whenever an input
// changes and are never mutated after [Assemble] returns them.
package schedule
