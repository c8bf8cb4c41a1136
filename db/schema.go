// Package db holds the relational schema applied by repository.Migrate.
package db

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var schema string

// Statements returns the schema split into individual statements, comments removed.
func Statements() []string {
	var (
		out []string
		b   strings.Builder
	)
	for _, line := range strings.Split(schema, "\n") {
		if t := strings.TrimSpace(line); t == "" || strings.HasPrefix(t, "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
