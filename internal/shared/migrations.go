package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationName matches files such as "0000_create_snapshots_up.sql".
var migrationName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)_(up|down)\.sql$`)

// Migration is one versioned schema change for the fetch cache.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// SchemaStatus describes how far a database is behind the embedded migrations.
type SchemaStatus struct {
	Current int
	Latest  int
	Pending []Migration
}

// UpToDate reports whether every embedded migration has been applied.
func (s SchemaStatus) UpToDate() bool { return len(s.Pending) == 0 }

// loadMigrations parses the embedded sql directory into migrations ordered by version.
// Every version needs both an up and a down script.
func loadMigrations() ([]Migration, error) {
	byVersion := map[int]*Migration{}

	err := fs.WalkDir(migrationFiles, "sql", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		parts := migrationName.FindStringSubmatch(d.Name())
		if parts == nil {
			return nil
		}
		version, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil
		}

		content, err := migrationFiles.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", d.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: parts[2]}
			byVersion[version] = m
		}
		if parts[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("incomplete migration %04d_%s", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	return migrations, nil
}

// Status compares the versions recorded in schema_migrations with the embedded migrations.
func Status(db *sql.DB) (SchemaStatus, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return SchemaStatus{}, err
	}
	if err := ensureMigrationsTable(db); err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	status := SchemaStatus{Current: -1, Latest: -1}
	for _, m := range migrations {
		status.Latest = m.Version
		if applied[m.Version] {
			status.Current = max(status.Current, m.Version)
		} else {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

// RunMigrations applies every pending migration in version order, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	status, err := Status(db)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, m := range status.Pending {
		err := inTx(db, func(tx *sql.Tx) error {
			if err := execScript(tx, m.Up); err != nil {
				return err
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %04d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration and returns it.
func RollbackMigration(db *sql.DB) (Migration, error) {
	status, err := Status(db)
	if err != nil {
		return Migration{}, fmt.Errorf("failed to load migrations: %w", err)
	}
	if status.Current < 0 {
		return Migration{}, ErrNoMigrations
	}

	migrations, err := loadMigrations()
	if err != nil {
		return Migration{}, err
	}
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == status.Current })
	if i < 0 {
		return Migration{}, fmt.Errorf("migration version %d not found", status.Current)
	}
	m := migrations[i]

	err = inTx(db, func(tx *sql.Tx) error {
		if err := execScript(tx, m.Down); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", m.Version)
		return err
	})
	if err != nil {
		return Migration{}, fmt.Errorf("failed to rollback migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return m, nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// execScript runs each semicolon-separated statement of script, skipping line comments.
func execScript(tx *sql.Tx, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var b strings.Builder
	for line := range strings.Lines(script) {
		if before, _, found := strings.Cut(line, "--"); found {
			line = before + "\n"
		}
		b.WriteString(line)
	}

	var out []string
	for stmt := range strings.SplitSeq(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
