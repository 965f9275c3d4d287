// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// scheduleFlags are shared by every command that builds a schedule.
func scheduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "Clock time the first track starts (HH:MM, default from config)",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Date of the set (YYYY-MM-DD, default: next Saturday)",
		},
		&cli.StringFlag{
			Name:  "tz",
			Usage: "IANA timezone for clock times (default from config)",
		},
		&cli.IntFlag{
			Name:  "crossfade",
			Usage: "Seconds of overlap between consecutive tracks",
		},
		&cli.BoolFlag{
			Name:  "refresh",
			Usage: "Ignore the fetch cache and fetch the playlist again",
		},
	}
}

// analyzeCommand prints the schedule for one playlist.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Show the timed schedule for a playlist",
		ArgsUsage: "<playlist url|uri|id>",
		Flags: append(scheduleFlags(),
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort rows by index, title, artist, tempo or duration",
				Value: "index",
			},
			&cli.BoolFlag{
				Name:  "desc",
				Usage: "Sort in descending order",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, csv, markdown, text or json",
				Value:   "table",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schedule to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable tempo and duration colors in table output",
			},
		),
		Action: r.Analyze,
	}
}

// exportCommand writes schedules to files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export schedules for one or more playlists to files",
		ArgsUsage: "<playlist> [playlist...]",
		Flags: append(scheduleFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, text or json",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (single playlist) or directory (several playlists)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent exports when several playlists are given",
				Value: 3,
			},
		),
		Action: r.Export,
	}
}

// cacheCommand manages the local fetch cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear cached playlist fetches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "clear",
				Usage: "Remove cached playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Only remove this playlist (URL, URI or ID)",
					},
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only remove entries fetched longer ago than this (e.g. 24h)",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the cache database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write an example configuration file to the --config path",
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve schedules over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive schedule building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch the interactive schedule builder",
		ArgsUsage: "[playlist]",
		Action:    r.TUI,
	}
}
