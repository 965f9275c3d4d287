package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
)

// TUI launches the interactive schedule builder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/setlist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	analyzer, err := r.analyzer(ctx)
	if err != nil {
		return err
	}

	config := r.settings()
	loc, err := config.Schedule.Location()
	if err != nil {
		return err
	}

	opts := ui.Options{
		Location:         loc,
		StartClock:       config.Schedule.DefaultStart,
		CrossfadeSeconds: config.Schedule.CrossfadeSeconds,
		Reference:        cmd.Args().First(),
	}
	if db, err := r.cacheDB(); err == nil {
		opts.Recent = repositories.NewSnapshotRepository(db)
	}

	model := ui.NewModel(ctx, analyzer, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
