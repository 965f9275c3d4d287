package formatter

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/schedule"
)

// Column positions used for per-cell coloring.
const (
	colIndex    = 0
	colBPM      = 3
	colDuration = 4
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	indexStyle  = cellStyle.Foreground(lipgloss.Color("245")).Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTable renders rows as a bordered table.
//
// When colored is set, the BPM and Song duration cells get their scale color as background with black text.
func RenderTable(rows []schedule.Row, colored bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == colIndex {
				return indexStyle
			}
			if !colored || row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch col {
			case colBPM:
				return colorCell(rows[row].TempoColor)
			case colDuration:
				return colorCell(rows[row].DurationColor)
			}
			return cellStyle
		})

	for _, r := range rows {
		t.Row(record(r)...)
	}

	return t.String()
}

func colorCell(hex string) lipgloss.Style {
	return cellStyle.
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color("#000000"))
}

// Summary returns "<N> tracks • Total duration: HHh MMm SSs".
func Summary(stats schedule.Stats) string {
	return fmt.Sprintf("%d tracks • Total duration: %s", stats.TrackCount, schedule.FormatTotal(stats.TotalDurationMS))
}

// Header returns the playlist title line shown above a table.
func Header(pl models.Playlist) string {
	if pl.Owner == "" {
		return pl.Name
	}
	return fmt.Sprintf("%s by %s", pl.Name, pl.Owner)
}
