package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ArtistSeparator joins artist names in a single display cell.
const ArtistSeparator = ", "

// FormatDuration formats milliseconds as "MM:SS". Minutes are not rolled into hours.
//
// Negative values are treated as zero.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatClock formats a moment as 24-hour "HH:MM" in the moment's own location.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// JoinArtists joins names with [ArtistSeparator]. An empty list gives an empty string.
func JoinArtists(names []string) string {
	return strings.Join(names, ArtistSeparator)
}

// FormatTotal formats milliseconds as "HHh MMm SSs" for playlist summaries.
func FormatTotal(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02dh %02dm %02ds", total/3600, (total%3600)/60, total%60)
}

// FormatTempo rounds a tempo to whole beats per minute. Absent tempos render blank.
func FormatTempo(tempo *float64) string {
	if tempo == nil {
		return ""
	}
	return fmt.Sprintf("%.0f", *tempo)
}
