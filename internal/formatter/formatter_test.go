package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/schedule"
)

func sampleSchedule() (models.Playlist, []schedule.Row, schedule.Stats) {
	pl := models.Playlist{ID: "37i9dQZF1DXcBWIGoYBM5M", Name: "Friday Warmup", Owner: "DJ", TrackCount: 3}
	tracks := []models.RawTrack{
		{ID: "t1", Title: "Song One", Artists: []models.Artist{{Name: "Artist One"}}, DurationMS: 180000},
		{ID: "t2", Title: "Song, Two", Artists: []models.Artist{{Name: "A"}, {Name: "B"}}, DurationMS: 200000},
		{ID: "t3", Title: "Song | Three", DurationMS: 220000},
	}
	features := map[string]models.FeatureRecord{
		"t1": {ID: "t1", Tempo: models.Tempo(120)},
		"t3": {ID: "t3", Tempo: models.Tempo(140)},
	}
	rows, stats := schedule.Assemble(tracks, features, schedule.Options{
		Start: time.Date(2026, 10, 24, 9, 0, 0, 0, time.UTC),
	})
	return pl, rows, stats
}

func TestExporters(t *testing.T) {
	pl, rows, stats := sampleSchedule()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(rows)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("CSV output does not parse: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected 4 CSV records, got %d", len(records))
		}

		if got := strings.Join(records[0], ","); got != "Index,Song name,Artist,BPM,Song duration,Cumulative duration,Approximate time" {
			t.Errorf("CSV header = %q", got)
		}

		want := [][]string{
			{"1", "Song One", "Artist One", "120", "03:00", "03:00", "09:03"},
			{"2", "Song, Two", "A, B", "", "03:20", "06:20", "09:06"},
			{"3", "Song | Three", "", "140", "03:40", "10:00", "09:10"},
		}
		for i, w := range want {
			if got := records[i+1]; strings.Join(got, "\x00") != strings.Join(w, "\x00") {
				t.Errorf("CSV row %d = %q, want %q", i+1, got, w)
			}
		}
	})

	t.Run("ExportToCSV Empty", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 1 {
			t.Errorf("expected only the header line, got %d lines", len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(pl, rows, stats)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Friday Warmup\n") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Owner**: DJ") {
			t.Errorf("Markdown missing owner")
		}
		if !strings.Contains(output, "3 tracks • Total duration: 00h 10m 00s") {
			t.Errorf("Markdown missing summary")
		}
		if !strings.Contains(output, "| Index | Song name | Artist |") {
			t.Errorf("Markdown missing table header")
		}
		if !strings.Contains(output, `Song \| Three`) {
			t.Errorf("Markdown should escape pipes in cells")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(pl, rows, stats)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Friday Warmup") {
			t.Errorf("Text missing playlist name")
		}
		if !strings.Contains(output, "09:03  1. Artist One - Song One [03:00, 120 BPM]") {
			t.Errorf("Text missing first track, got: %s", output)
		}
		if !strings.Contains(output, "[03:20, - BPM]") {
			t.Errorf("Text should mark absent tempo, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(pl, rows, stats)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc struct {
			Playlist models.Playlist `json:"playlist"`
			Rows     []schedule.Row  `json:"rows"`
			Stats    schedule.Stats  `json:"stats"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("JSON output does not parse: %v", err)
		}
		if doc.Playlist.ID != pl.ID || len(doc.Rows) != 3 || doc.Stats.TotalDurationMS != 600000 {
			t.Errorf("JSON document = %+v", doc)
		}
		if doc.Rows[1].Tempo != nil {
			t.Errorf("absent tempo should stay absent in JSON")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "CSV", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: "txt", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "xlsx", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	pl, rows, stats := sampleSchedule()

	t.Run("WriteCSVExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "schedule.csv")

		got, err := WriteCSVExport(pl, rows, path)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if got != path {
			t.Errorf("WriteCSVExport() = %s, want %s", got, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.HasPrefix(string(data), "Index,Song name") {
			t.Errorf("unexpected CSV content: %s", data)
		}
	})

	t.Run("Default Path", func(t *testing.T) {
		if got := DefaultExportPath(pl.ID, FormatCSV); got != "playlist_analysis_37i9dQZF1DXcBWIGoYBM5M.csv" {
			t.Errorf("DefaultExportPath() = %s", got)
		}
		if got := DefaultExportPath(pl.ID, FormatMarkdown); got != "playlist_analysis_37i9dQZF1DXcBWIGoYBM5M.md" {
			t.Errorf("DefaultExportPath() = %s", got)
		}
	})

	t.Run("Write Each Format", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON, FormatTable} {
			path, err := WriteExport(f, pl, rows, stats, filepath.Join(dir, "schedule"+f.Extension()))
			if err != nil {
				t.Errorf("WriteExport(%s) failed: %v", f, err)
				continue
			}
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Errorf("WriteExport(%s) produced no file: %v", f, err)
			}
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := WriteCSVExport(pl, rows, filepath.Join(blocker, "out.csv")); err == nil {
			t.Error("WriteCSVExport should fail when the parent is a file")
		}
	})
}

func TestRenderTable(t *testing.T) {
	_, rows, stats := sampleSchedule()

	output := RenderTable(rows, false)
	for _, want := range []string{"Index", "Song name", "Approximate time", "Song One", "A, B", "09:10"} {
		if !strings.Contains(output, want) {
			t.Errorf("table missing %q:\n%s", want, output)
		}
	}

	if colored := RenderTable(rows, true); !strings.Contains(colored, "Song One") {
		t.Errorf("colored table missing content")
	}

	if empty := RenderTable(nil, true); !strings.Contains(empty, "Song name") {
		t.Errorf("empty table should still render headers")
	}

	if got := Summary(stats); got != "3 tracks • Total duration: 00h 10m 00s" {
		t.Errorf("Summary() = %q", got)
	}
	if got := Summary(schedule.Stats{}); got != "0 tracks • Total duration: 00h 00m 00s" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestHeader(t *testing.T) {
	if got := Header(models.Playlist{Name: "Mix", Owner: "DJ"}); got != "Mix by DJ" {
		t.Errorf("Header() = %q", got)
	}
	if got := Header(models.Playlist{Name: "Mix"}); got != "Mix" {
		t.Errorf("Header() = %q", got)
	}
}
