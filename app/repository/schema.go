package repository

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

func SchemaStatements(dialect Dialect) ([]string, error) {
	raw, err := schemaFS.ReadFile("schema/" + string(dialect) + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for dialect %q: %w", dialect, err)
	}

	var statements []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

// Migrate creates the reset-token and audit tables. The users table belongs
// to the resource store and is expected to exist already.
func Migrate(ctx context.Context, db DBTX, dialect Dialect) (int, error) {
	statements, err := SchemaStatements(dialect)
	if err != nil {
		return 0, err
	}

	for i, stmt := range statements {
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return len(statements), nil
}
