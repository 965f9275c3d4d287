package tasks

import (
	"fmt"

	"github.com/desertthunder/setlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseReference Phase = iota
	LookupCache
	FetchPlaylist
	FetchTracks
	FetchFeatures
	AssembleRows
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case ParseReference:
		return "parse_reference"
	case LookupCache:
		return "lookup_cache"
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case FetchFeatures:
		return "fetch_features"
	case AssembleRows:
		return "assemble_rows"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// analyzeSteps is the Total reported by single-playlist updates.
const analyzeSteps = 6

func parseReferenceUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseReference,
		Step:    1,
		Total:   analyzeSteps,
		Message: fmt.Sprintf("Resolving %s...", ref),
	}
}

func cacheUpdate(id string, hit bool) ProgressUpdate {
	msg := fmt.Sprintf("No cached copy of %s", id)
	if hit {
		msg = fmt.Sprintf("Using cached copy of %s", id)
	}
	return ProgressUpdate{Phase: LookupCache, Step: 2, Total: analyzeSteps, Message: msg, Data: hit}
}

func fetchPlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    3,
		Total:   analyzeSteps,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func fetchTracksUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    4,
		Total:   analyzeSteps,
		Message: fmt.Sprintf("Fetching %d tracks of %s...", pl.TrackCount, pl.Name),
		Data:    pl,
	}
}

func fetchFeaturesUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    5,
		Total:   analyzeSteps,
		Message: fmt.Sprintf("Fetching audio features for %d tracks...", n),
	}
}

func assembleUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssembleRows,
		Step:    6,
		Total:   analyzeSteps,
		Message: fmt.Sprintf("Building schedule for %d tracks...", n),
	}
}

func exportingPlaylistUpdate(step, total int, ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, ref),
	}
}

func exportCompletedUpdate(step, total int, name, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, file),
	}
}

func exportFailedUpdate(step, total int, ref string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, ref, err),
	}
}
