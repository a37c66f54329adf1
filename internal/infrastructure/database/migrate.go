package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

// Migrations live under migrations/<driver>/ as
//
//	0001_name.up.sql / 0001_name.down.sql
//
// and are applied in version order, each in its own transaction.
//
//go:embed migrations
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string
	downFile string
}

var migrationFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

// Migrate applies every migration for driver that has not run yet.
func Migrate(db *sql.DB, driver string) error {
	migs, err := loadMigrations(driver)
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if applied[v] {
			continue
		}
		m := migs[v]
		if m.upFile == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		if err := runScript(db, m.upFile, `INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return fmt.Errorf("migration %04d_%s failed: %w", v, m.name, err)
		}
	}
	return nil
}

// RollbackLast reverts the most recent migration.
func RollbackLast(db *sql.DB, driver string) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	var version int
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	migs, err := loadMigrations(driver)
	if err != nil {
		return err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return fmt.Errorf("no down migration found for version %d", version)
	}
	return runScript(db, m.downFile, `DELETE FROM schema_migrations WHERE version = ?`, version)
}

func runScript(db *sql.DB, file, bookkeeping string, version int) error {
	text, err := migrationsFS.ReadFile(file)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(string(text)) {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements splits a script on semicolons. The MySQL driver runs one
// statement per Exec unless multiStatements is enabled in the DSN.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadMigrations(driver string) (map[int]migration, error) {
	dir := "migrations/" + driver
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}

	out := make(map[int]migration)
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(m[1], "%04d", &version); err != nil {
			continue
		}
		item := out[version]
		item.version = version
		item.name = m[2]
		path := dir + "/" + de.Name()
		if m[3] == "up" {
			item.upFile = path
		} else {
			item.downFile = path
		}
		out[version] = item
	}
	return out, nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL PRIMARY KEY,
		appliedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	got := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}
