// package formatter provides functions to export schedules to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/schedule"
)

// Headers are the schedule columns, in display order.
var Headers = []string{"Index", "Song name", "Artist", "BPM", "Song duration", "Cumulative duration", "Approximate time"}

// Format names an export format.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv, markdown, text or json)", name)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText, FormatTable:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// record returns a row's display values in [Headers] order.
func record(r schedule.Row) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.Title,
		r.Artists,
		r.TempoDisplay,
		r.DurationDisplay,
		r.CumulativeDisplay,
		r.ClockDisplay,
	}
}

// ExportToCSV converts schedule rows to CSV with a header row. Values are the formatted display strings.
func ExportToCSV(rows []schedule.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		if err := writer.Write(record(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a schedule to a Markdown document with a summary and a pipe table.
func ExportToMarkdown(pl models.Playlist, rows []schedule.Row, stats schedule.Stats) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", pl.Name)
	if pl.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n\n", pl.Owner)
	}
	fmt.Fprintf(&buf, "%s\n\n", Summary(stats))

	buf.WriteString("| " + strings.Join(Headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(Headers)) + "\n")
	for _, r := range rows {
		cells := record(r)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a schedule to plain text, one track per line.
func ExportToText(pl models.Playlist, rows []schedule.Row, stats schedule.Stats) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.Name)
	fmt.Fprintf(&buf, "%s\n\n", Summary(stats))

	for _, r := range rows {
		bpm := r.TempoDisplay
		if bpm == "" {
			bpm = "-"
		}
		fmt.Fprintf(&buf, "%s  %d. %s - %s [%s, %s BPM]\n", r.ClockDisplay, r.Index, r.Artists, r.Title, r.DurationDisplay, bpm)
	}

	return buf.Bytes(), nil
}

type jsonDocument struct {
	Playlist models.Playlist `json:"playlist"`
	Stats    schedule.Stats  `json:"stats"`
	Rows     []schedule.Row  `json:"rows"`
}

// ExportToJSON converts a schedule to indented JSON.
func ExportToJSON(pl models.Playlist, rows []schedule.Row, stats schedule.Stats) ([]byte, error) {
	if rows == nil {
		rows = []schedule.Row{}
	}
	data, err := json.MarshalIndent(jsonDocument{Playlist: pl, Stats: stats, Rows: rows}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders a schedule in the given format. [FormatTable] renders without colors.
func Export(format Format, pl models.Playlist, rows []schedule.Row, stats schedule.Stats) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(rows)
	case FormatMarkdown:
		return ExportToMarkdown(pl, rows, stats)
	case FormatText:
		return ExportToText(pl, rows, stats)
	case FormatJSON:
		return ExportToJSON(pl, rows, stats)
	case FormatTable:
		return []byte(RenderTable(rows, false) + "\n" + Summary(stats) + "\n"), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// DefaultExportPath returns playlist_analysis_<id> with the format's extension.
func DefaultExportPath(playlistID string, format Format) string {
	return fmt.Sprintf("playlist_analysis_%s%s", playlistID, format.Extension())
}

// WriteExport writes a schedule to path, creating parent directories as needed.
//
// Defaults to [DefaultExportPath] in the working directory. Returns the path written.
func WriteExport(format Format, pl models.Playlist, rows []schedule.Row, stats schedule.Stats, path string) (string, error) {
	if path == "" {
		path = DefaultExportPath(pl.ID, format)
	}

	data, err := Export(format, pl, rows, stats)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// WriteCSVExport writes the CSV export of a schedule to path (default playlist_analysis_<id>.csv).
func WriteCSVExport(pl models.Playlist, rows []schedule.Row, path string) (string, error) {
	return WriteExport(FormatCSV, pl, rows, schedule.Stats{}, path)
}
