// Package migrations embeds the schema for every supported driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"emotional-diary/pkg/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Direction selects the migration file suffix
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Load returns the SQL statements of the schema migration for driver and direction
func Load(driver string, direction Direction) ([]string, error) {
	if direction != Up && direction != Down {
		return nil, fmt.Errorf("invalid migration direction: %s", direction)
	}

	name := fmt.Sprintf("%s/001_create_schema.%s.sql", driver, direction)
	content, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("no migration for driver %q: %w", driver, err)
	}

	var statements []string
	for _, stmt := range strings.Split(string(content), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

// Apply runs the migration for the connection's driver
func Apply(ctx context.Context, db *database.DB, direction Direction) error {
	statements, err := Load(db.Driver(), direction)
	if err != nil {
		return err
	}

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, "migration", stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
