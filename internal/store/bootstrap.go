package store

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// schemaStatements returns the DDL statements for the dialect
func schemaStatements(dialect string) ([]string, error) {
	content, err := schemaFS.ReadFile("sql/" + dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for dialect %q: %w", dialect, err)
	}

	return splitSQLStatements(string(content)), nil
}

// splitSQLStatements splits SQL content on semicolons, dropping comment lines and empty statements
func splitSQLStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	return statements
}
