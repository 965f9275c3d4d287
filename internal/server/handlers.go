package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

const (
	schedulePath    = "/api/schedule"
	scheduleCSVPath = "/api/schedule.csv"
)

// Defaults fill in query parameters the client leaves out.
type Defaults struct {
	Location         *time.Location
	StartClock       string
	CrossfadeSeconds int
}

// ScheduleHandler answers schedule requests as JSON or CSV.
type ScheduleHandler struct {
	analyzer Analyzer
	defaults Defaults
	logger   *log.Logger
	now      func() time.Time
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(analyzer Analyzer, defaults Defaults, logger *log.Logger) *ScheduleHandler {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	return &ScheduleHandler{analyzer: analyzer, defaults: defaults, logger: logger, now: time.Now}
}

// Routes returns the HTTP routes this handler serves.
func (h *ScheduleHandler) Routes() []string {
	return []string{schedulePath, scheduleCSVPath}
}

type scheduleQuery struct {
	req  tasks.Request
	sort schedule.SortKey
	desc bool
}

// ServeHTTP builds the schedule described by the query string.
func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), q.req, nil)
	if err != nil {
		h.logger.Warn("analysis failed", "reference", q.req.Reference, "err", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	res.Rows = schedule.SortRows(res.Rows, q.sort, q.desc)

	if r.URL.Path == scheduleCSVPath {
		data, err := formatter.ExportToCSV(res.Rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		name := formatter.DefaultExportPath(res.Playlist.ID, formatter.FormatCSV)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = w.Write(data)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ScheduleHandler) parseQuery(r *http.Request) (scheduleQuery, error) {
	values := r.URL.Query()
	var q scheduleQuery

	q.req.Reference = strings.TrimSpace(values.Get("playlist"))
	if q.req.Reference == "" {
		return q, fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	loc := h.defaults.Location
	if tz := values.Get("tz"); tz != "" {
		var err error
		if loc, err = shared.ResolveLocation(tz); err != nil {
			return q, err
		}
	}
	q.req.Location = loc

	clock := values.Get("start")
	if clock == "" {
		clock = h.defaults.StartClock
	}
	start, err := tasks.ResolveStart(values.Get("date"), clock, loc, h.now())
	if err != nil {
		return q, err
	}
	q.req.Start = start

	crossfade := h.defaults.CrossfadeSeconds
	if v := values.Get("crossfade"); v != "" {
		if crossfade, err = strconv.Atoi(v); err != nil || crossfade < 0 {
			return q, fmt.Errorf("%w: crossfade %q must be a non-negative number of seconds", shared.ErrInvalidArgument, v)
		}
	}
	q.req.CrossfadeMS = int64(crossfade) * 1000

	if v := values.Get("refresh"); v != "" {
		if q.req.Refresh, err = strconv.ParseBool(v); err != nil {
			return q, fmt.Errorf("%w: refresh %q", shared.ErrInvalidArgument, v)
		}
	}

	var ok bool
	if q.sort, ok = schedule.ParseSortKey(values.Get("sort")); !ok {
		return q, fmt.Errorf("%w: sort %q", shared.ErrInvalidArgument, values.Get("sort"))
	}
	if v := values.Get("desc"); v != "" {
		if q.desc, err = strconv.ParseBool(v); err != nil {
			return q, fmt.Errorf("%w: desc %q", shared.ErrInvalidArgument, v)
		}
	}

	return q, nil
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidReference),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
