package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/shared"
)

// SetupDatabase initializes the cache database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.settings()
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		m, err := shared.RollbackMigration(db)
		if err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		r.logger.Info("migration rolled back", "version", m.Version, "name", m.Name)
		return r.writePlain("✓ Rolled back %04d_%s\n", m.Version, m.Name)
	}

	status, err := shared.Status(db)
	if err != nil {
		return err
	}
	if status.UpToDate() {
		r.logger.Info("schema up to date", "version", status.Current)
		return nil
	}

	r.logger.Info("running database migrations", "pending", len(status.Pending), "latest", status.Latest)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Create an app at https://developer.spotify.com/dashboard\n")
	r.writePlain("2. Set client_id and client_secret in %s (or %s / %s)\n", path, shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("3. Run 'setlist analyze <playlist link>'\n")
	return nil
}
