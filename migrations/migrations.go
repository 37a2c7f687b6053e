// Package migrations holds the SQL schema and applies it in file order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// NotifyChannel is the channel the change trigger publishes to.
const NotifyChannel = "gym_changes"

// Render substitutes the schema placeholder with the quoted schema name.
func Render(sql, schema string) string {
	return strings.ReplaceAll(sql, "{{schema}}", pq.QuoteIdentifier(schema))
}

// Names returns migration file names in apply order.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration not yet recorded in schema_migrations.
func Apply(ctx context.Context, db *sqlx.DB, schema string, logger *zap.Logger) (int, error) {
	bootstrap := Render(`
        CREATE SCHEMA IF NOT EXISTS {{schema}};
        CREATE TABLE IF NOT EXISTS {{schema}}.schema_migrations (
            name       TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`, schema)
	if _, err := db.ExecContext(ctx, bootstrap); err != nil {
		return 0, fmt.Errorf("bootstrap migrations: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, Render(`SELECT name FROM {{schema}}.schema_migrations`, schema)); err != nil {
		return 0, fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	names, err := Names()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if done[name] {
			continue
		}

		body, err := files.ReadFile(name)
		if err != nil {
			return count, err
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return count, err
		}
		if _, err := tx.ExecContext(ctx, Render(string(body), schema)); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, Render(`INSERT INTO {{schema}}.schema_migrations (name) VALUES ($1)`, schema), name); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return count, err
		}

		logger.Info("✅ Миграция применена", zap.String("name", name))
		count++
	}
	return count, nil
}
