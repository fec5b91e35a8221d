package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// MigrationsFS holds the embedded schema migration files. The
// migrations package sets it from its go:embed directive at init time
// so the schema travels inside the binary.
var MigrationsFS embed.FS

// MigrationsDir is the directory inside MigrationsFS holding the
// migration files. "." when they sit at the root of the embedded
// filesystem.
var MigrationsDir = "migrations"

// A migration pairs the up and down SQL for one schema version.
// Files are named YYYYMMDD_HHMMSS_description.{up,down}.sql; the
// date-time prefix is the version and orders application.
type migration struct {
	version string
	name    string
	up      string
	down    string
}

// Migrate applies every migration not yet recorded in the
// schema_migrations table, oldest first, each in its own transaction.
// A failing migration is rolled back and stops the run; migrations
// already applied stay applied, and rerunning resumes from the
// failure.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureVersionTable(ctx); err != nil {
		return err
	}

	all, err := readMigrations()
	if err != nil {
		return err
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range all {
		if done[m.version] {
			continue
		}
		if err := db.runUp(ctx, m); err != nil {
			return fmt.Errorf("migration %s (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// MigrateDown reverts the most recently applied migration. Intended
// for development and tests; the daemon only migrates forward.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.ensureVersionTable(ctx); err != nil {
		return err
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(done) == 0 {
		return nil
	}

	latest := ""
	for v := range done {
		if v > latest {
			latest = v
		}
	}

	all, err := readMigrations()
	if err != nil {
		return err
	}

	var target *migration
	for i := range all {
		if all[i].version == latest {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s: files not found", latest)
	}
	if target.down == "" {
		return fmt.Errorf("migration %s: no down SQL", latest)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %s: %w", latest, err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op once committed

	if _, err := tx.ExecContext(ctx, target.down); err != nil {
		return fmt.Errorf("migration %s: %w", latest, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", latest); err != nil {
		return fmt.Errorf("migration %s: clearing version: %w", latest, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %s: %w", latest, err)
	}
	return nil
}

// ensureVersionTable creates the schema_migrations table on first run.
func (db *DB) ensureVersionTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

// appliedVersions returns the set of recorded migration versions.
func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	return done, nil
}

// runUp applies one migration and records its version, atomically.
func (db *DB) runUp(ctx context.Context, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op once committed

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// readMigrations loads every migration in MigrationsFS, ordered by
// version. Versions without an up file are skipped.
func readMigrations() ([]migration, error) {
	var empty embed.FS
	if MigrationsFS == empty {
		return nil, nil
	}

	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, nil // nothing embedded
	}

	byVersion := make(map[string]*migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, up, ok := splitMigrationName(e.Name())
		if !ok {
			continue
		}
		sqlText, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if up {
			m.up = string(sqlText)
		} else {
			m.down = string(sqlText)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// splitMigrationName parses a migration filename such as
// "20260815_120000_create_remote_events.up.sql" into its version
// ("20260815_120000"), name ("create_remote_events") and direction.
// ok is false for files that are not migrations.
func splitMigrationName(file string) (version, name string, up, ok bool) {
	base, isSQL := strings.CutSuffix(file, ".sql")
	if !isSQL {
		return "", "", false, false
	}

	switch {
	case strings.HasSuffix(base, ".up"):
		up = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	// The version is the date_time pair; the rest is the name.
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		return "", "", false, false
	}
	version = parts[0] + "_" + parts[1]
	name = base
	if len(parts) == 3 {
		name = parts[2]
	}
	return version, name, up, true
}
