package tasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/formatter"
)

// BulkExportOpts contains configuration for bulk schedule exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: csv, markdown, text, json
	OutputDir  string           // Base output directory (default: setlist_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 3)
	RateLimit  float64          // Analyses started per second (default: 2)
	Request    Request          // Template request; Reference is replaced per playlist
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	Reference    string `json:"reference"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	PlaylistName string `json:"playlist_name,omitempty"`
	File         string `json:"file,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	position     int
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

type exportJob struct {
	position  int
	reference string
}

// BulkExport analyzes and exports several playlists concurrently with rate limiting and progress tracking.
//
// A failed playlist is recorded in the result and does not stop the others. Results keep the input
// order and a manifest (export_manifest.json) is written next to the exports. On cancellation every
// playlist that was not exported is reported as failed, and no progress is sent after BulkExport returns.
func (a *Analyzer) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, refs []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" || opts.Format == formatter.FormatTable {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("setlist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(refs),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(refs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(refs))
	results := make(chan PlaylistExportResult, len(refs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go a.exportWorker(ctx, &wg, jobs, results, opts)
	}

	feederDone := make(chan struct{})
	go func() {
		defer close(feederDone)
		defer close(jobs)
		for i, ref := range refs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			a.sendProgress(prog, exportingPlaylistUpdate(i+1, len(refs), ref))
			jobs <- exportJob{position: i, reference: ref}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	seen := make([]bool, len(refs))
	for res := range results {
		completed++
		seen[res.position] = true
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			a.sendProgress(prog, exportCompletedUpdate(completed, len(refs), res.PlaylistName, res.File))
		} else {
			result.FailedExports++
			a.sendProgress(prog, exportFailedUpdate(completed, len(refs), res.Reference, fmt.Errorf("%s", res.Error)))
		}
	}

	<-feederDone

	ctxErr := ctx.Err()
	if ctxErr != nil {
		for i, ref := range refs {
			if seen[i] {
				continue
			}
			result.FailedExports++
			result.Results = append(result.Results, PlaylistExportResult{Reference: ref, Error: ctxErr.Error(), position: i})
		}
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return cmp.Compare(a.position, b.position)
	})

	if ctxErr != nil {
		return result, fmt.Errorf("export canceled: %w", ctxErr)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (a *Analyzer) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- a.exportSinglePlaylist(ctx, job, opts)
	}
}

// exportSinglePlaylist analyzes one playlist and writes it in the requested format.
func (a *Analyzer) exportSinglePlaylist(ctx context.Context, job exportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{Reference: job.reference, position: job.position}

	req := opts.Request
	req.Reference = job.reference

	res, err := a.Analyze(ctx, req, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.PlaylistID = res.Playlist.ID
	result.PlaylistName = res.Playlist.Name

	path := filepath.Join(opts.OutputDir, formatter.DefaultExportPath(res.Playlist.ID, opts.Format))
	file, err := formatter.WriteExport(opts.Format, res.Playlist, res.Rows, res.Stats, path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.File = file
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
