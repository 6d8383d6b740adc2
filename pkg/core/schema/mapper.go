// Package schema maps input table headers to logical fields. Call sites
// never read cells by header string; they resolve a Mapping once per table
// and index rows through it.
package schema

import (
	"fmt"
	"strings"
)

// NotMapped marks a logical field whose column could not be located.
const NotMapped = -1

// Field describes one logical field: an ordered list of accepted header
// substrings and an optional fallback column index (0-based, -1 for none).
type Field struct {
	Name     string
	Aliases  []string
	Fallback int
}

// Mapping is the resolved logical field -> column index table.
type Mapping map[string]int

// SchemaError reports a required logical column that could not be mapped.
// The affected category yields empty totals; the run continues.
type SchemaError struct {
	Table string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: table %q has no column for field %q", e.Table, e.Field)
}

// Map resolves each field against the header row. For every field the first
// exact (case-insensitive, trimmed) alias match wins; otherwise the first
// substring match; otherwise the fallback index. Ambiguity is resolved
// deterministically by alias order, then column scan order.
func Map(header []string, fields []Field) Mapping {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := make(Mapping, len(fields))
	for _, f := range fields {
		m[f.Name] = locate(norm, f)
	}
	return m
}

func locate(norm []string, f Field) int {
	for _, alias := range f.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		for col, cell := range norm {
			if cell == a {
				return col
			}
		}
	}
	for _, alias := range f.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		for col, cell := range norm {
			if cell != "" && strings.Contains(cell, a) {
				return col
			}
		}
	}
	if f.Fallback >= 0 {
		return f.Fallback
	}
	return NotMapped
}

// Col returns the column index for a logical field, or NotMapped.
func (m Mapping) Col(field string) int {
	if col, ok := m[field]; ok {
		return col
	}
	return NotMapped
}

// Has reports whether the field resolved to a real column.
func (m Mapping) Has(field string) bool {
	return m.Col(field) != NotMapped
}

// Cell returns the trimmed cell for a logical field, or "" when the field is
// unmapped or the row is too short.
func (m Mapping) Cell(row []string, field string) string {
	col := m.Col(field)
	if col == NotMapped || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
