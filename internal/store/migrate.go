package store

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one parsed `NNN_description.sql` file, embedded into the
// binary rather than read from an on-disk directory at runtime — unlike
// the teacher's external-migrations-dir CLI, this store ships as a single
// binary with a single data file, so its migrations travel with the binary
// (spec §6: "no other on-disk core state" besides the one db file).
type migration struct {
	version     int
	description string
	sql         string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		var version int
		var description string
		if _, err := fmt.Sscanf(entry.Name(), "%d_%s", &version, &description); err != nil {
			return nil, fmt.Errorf("invalid migration filename %q (want NNN_description.sql): %w", entry.Name(), err)
		}
		description = strings.TrimSuffix(description, ".sql")
		description = strings.ReplaceAll(description, "_", " ")

		out = append(out, migration{version: version, description: description, sql: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// Migrate applies every embedded migration newer than the schema's current
// version, in order, each inside its own transaction. Re-running against
// an up-to-date schema is a no-op (spec §7's "migration conflict ->
// recognized -> success" requirement).
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version     INTEGER PRIMARY KEY,
			applied_at  INTEGER NOT NULL,
			description TEXT
		);
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := d.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("read current schema version: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := d.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.description, err)
		}
		applied++
	}

	if applied == 0 {
		log.Info().Int("version", current).Msg("result store schema up to date")
	} else {
		log.Info().Int("from", current).Int("applied", applied).Msg("result store migrations applied")
	}
	return nil
}

func (d *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("exec migration sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at, description) VALUES (?, strftime('%s','now'), ?)`,
		m.version, m.description,
	); err != nil {
		return fmt.Errorf("record schema_version row: %w", err)
	}

	return tx.Commit()
}
