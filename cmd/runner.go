package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	fetcher services.Fetcher
	db      *sql.DB
	logger  *log.Logger
	output  io.Writer
	now     func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Fetcher and DB are created from the configuration on first use when left nil.
type RunnerOpts struct {
	Config  *shared.Config
	Fetcher services.Fetcher
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		fetcher: opts.Fetcher,
		db:      opts.DB,
		logger:  opts.Logger,
		output:  opts.Output,
		now:     time.Now,
	}
}

// Init loads the configuration named by --config and applies the log level. It runs before every command.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := shared.Settings(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if err := shared.SetLogLevelString(r.logger, r.config.LogLevel); err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the cache database, if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
		r.db = nil
	}
}

func (r *Runner) settings() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// spotify returns the configured fetcher, creating the Spotify client on first use.
func (r *Runner) spotify(ctx context.Context) (services.Fetcher, error) {
	if r.fetcher != nil {
		return r.fetcher, nil
	}

	svc, err := services.NewSpotifyService(ctx, r.settings().Credentials.Spotify,
		services.WithLogger(shared.WithLogger(r.logger, "service", "spotify")))
	if err != nil {
		return nil, err
	}
	r.fetcher = svc
	return svc, nil
}

// cacheDB opens the fetch cache database on first use.
func (r *Runner) cacheDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenCache(r.settings().Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// analyzer builds an Analyzer over the Spotify fetcher. The cache is attached when cache_ttl is positive;
// a cache that cannot be opened is logged and skipped.
func (r *Runner) analyzer(ctx context.Context) (*tasks.Analyzer, error) {
	fetcher, err := r.spotify(ctx)
	if err != nil {
		return nil, err
	}
	analyzer := tasks.NewAnalyzer(fetcher, shared.WithLogger(r.logger, "component", "analyzer"))

	maxAge, err := r.settings().Schedule.CacheMaxAge()
	if err != nil {
		return nil, err
	}
	if maxAge <= 0 {
		return analyzer, nil
	}

	db, err := r.cacheDB()
	if err != nil {
		r.logger.Warn("fetch cache unavailable", "path", r.settings().Database.Path, "err", err)
		return analyzer, nil
	}
	cache := repositories.NewSnapshotCache(repositories.NewSnapshotRepository(db), shared.WithLogger(r.logger, "component", "cache"))
	return analyzer.WithCache(cache, maxAge), nil
}

// request builds an analysis request from the schedule flags, falling back to the [schedule] config section.
func (r *Runner) request(cmd *cli.Command, reference string) (tasks.Request, error) {
	config := r.settings().Schedule

	loc, err := config.Location()
	if err != nil {
		return tasks.Request{}, err
	}
	if tz := cmd.String("tz"); tz != "" {
		if loc, err = shared.ResolveLocation(tz); err != nil {
			return tasks.Request{}, err
		}
	}

	clock := cmd.String("start")
	if clock == "" {
		clock = config.DefaultStart
	}
	start, err := tasks.ResolveStart(cmd.String("date"), clock, loc, r.now())
	if err != nil {
		return tasks.Request{}, err
	}

	crossfade := config.CrossfadeSeconds
	if cmd.IsSet("crossfade") {
		crossfade = cmd.Int("crossfade")
	}
	if crossfade < 0 {
		return tasks.Request{}, fmt.Errorf("%w: crossfade must not be negative", shared.ErrInvalidArgument)
	}

	return tasks.Request{
		Reference:   reference,
		Start:       start,
		Location:    loc,
		CrossfadeMS: int64(crossfade) * 1000,
		Refresh:     cmd.Bool("refresh"),
	}, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		analyzeCommand, exportCommand, cacheCommand, setupCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
