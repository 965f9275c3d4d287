// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has four views:
//  1. [FormView] : Playlist reference, start time, date and timezone inputs
//  2. [LoadingView] : Spinner and progress while the schedule is built
//  3. [ScheduleView] : Scrollable table with tempo and duration color scales
//  4. [RecentView] : Playlists found in the fetch cache, to refill the form
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
//
// Every submitted analysis gets a sequence number. Results and progress carrying an older number are dropped, so
// only the most recent request can change what is shown.
//
// Progress updates flow through a channel from the Analyzer, providing non-blocking status reporting.
package ui
