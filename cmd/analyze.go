package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// Analyze builds and prints the schedule for one playlist.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	reference := cmd.Args().First()
	if reference == "" {
		return fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	sortKey, ok := schedule.ParseSortKey(cmd.String("sort"))
	if !ok {
		return fmt.Errorf("%w: sort %q", shared.ErrInvalidArgument, cmd.String("sort"))
	}

	req, err := r.request(cmd, reference)
	if err != nil {
		return err
	}

	res, err := r.run(ctx, req)
	if err != nil {
		return err
	}
	rows := schedule.SortRows(res.Rows, sortKey, cmd.Bool("desc"))

	var data []byte
	if format == formatter.FormatTable {
		colored := !cmd.Bool("no-color") && cmd.String("output") == ""
		data = []byte(fmt.Sprintf("%s\n%s\n%s\n", formatter.Header(res.Playlist),
			formatter.RenderTable(rows, colored), formatter.Summary(res.Stats)))
	} else if data, err = formatter.Export(format, res.Playlist, rows, res.Stats); err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		r.logger.Info("schedule written", "path", path, "tracks", res.Stats.TrackCount)
		return nil
	}

	_, err = r.output.Write(data)
	return err
}

// run analyzes req, showing a spinner while the playlist is fetched when stdout is a terminal.
func (r *Runner) run(ctx context.Context, req tasks.Request) (*tasks.Result, error) {
	analyzer, err := r.analyzer(ctx)
	if err != nil {
		return nil, err
	}

	if !isTerminal(r.output) {
		return analyzer.Analyze(ctx, req, nil)
	}

	var res *tasks.Result
	action := func(ctx context.Context) error {
		var err error
		res, err = analyzer.Analyze(ctx, req, nil)
		return err
	}
	if err := spinner.New().Title("Fetching playlist...").Context(ctx).ActionWithErr(action).Run(); err != nil {
		return nil, err
	}
	return res, nil
}

// Export writes the schedule for each playlist to a file.
//
// A single playlist is written to --output (or playlist_analysis_<id>.<ext>). Several playlists
// are exported concurrently into the --output directory with a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	refs := cmd.Args().Slice()
	if len(refs) == 0 {
		return fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if format == formatter.FormatTable {
		format = formatter.FormatCSV
	}

	req, err := r.request(cmd, "")
	if err != nil {
		return err
	}

	if len(refs) == 1 {
		req.Reference = refs[0]
		res, err := r.run(ctx, req)
		if err != nil {
			return err
		}
		path := cmd.String("output")
		if path == "" {
			path = formatter.DefaultExportPath(res.Playlist.ID, format)
		}
		file, err := formatter.WriteExport(format, res.Playlist, res.Rows, res.Stats, path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %s (%d tracks) → %s\n", res.Playlist.Name, res.Stats.TrackCount, file)
	}

	analyzer, err := r.analyzer(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(refs)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "step", u.Step, "total", u.Total)
		}
	}()

	result, err := analyzer.BulkExport(ctx, progress, refs, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		Request:    req,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("Exported %d/%d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ %s → %s\n", res.PlaylistName, res.File)
		} else {
			r.writePlain("  ✗ %s: %s\n", res.Reference, res.Error)
		}
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d exports failed", result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
