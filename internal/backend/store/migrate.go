package store

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	migrations "github.com/dropDatabas3/adminconsole/migrations/postgres"
)

// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql)
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// ParseMigrations lee las migraciones embebidas ordenadas por versión.
func ParseMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := migrationFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}
		version, _ := strconv.Atoi(matches[1])
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		out = append(out, Migration{Version: version, Name: matches[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrate aplica las migraciones pendientes, cada una en su transacción.
// Devuelve las versiones aplicadas.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]int, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied := map[int]bool{}
	rows, err := pool.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("getting applied migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	migs, err := ParseMigrations(migrations.ConsoleFS, migrations.ConsoleDir)
	if err != nil {
		return nil, fmt.Errorf("parsing migrations: %w", err)
	}

	var done []int
	for _, mig := range migs {
		if applied[mig.Version] {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return done, err
		}
		if _, err := tx.Exec(ctx, mig.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return done, fmt.Errorf("applying migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO _migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name); err != nil {
			_ = tx.Rollback(ctx)
			return done, err
		}
		if err := tx.Commit(ctx); err != nil {
			return done, err
		}
		done = append(done, mig.Version)
	}
	return done, nil
}
