package parse

import (
	"regexp"
	"strings"
)

// Trailing split annotations like "(35%)" that ride along on assigned names.
var pctAnnotationRe = regexp.MustCompile(`\(\s*\d+(\.\d+)?\s*%?\s*\)`)

// AssignedNames parses an assigned-technicians cell into unique names.
// Comma-separated lists are authoritative; otherwise the cell is
// space-separated and "First Last" pairs are reconstructed. An odd token
// count cannot be paired, so each token becomes a standalone name and
// heuristic is reported true so the caller can log it.
func AssignedNames(raw string) (names []string, heuristic bool) {
	s := strings.TrimSpace(pctAnnotationRe.ReplaceAllString(raw, ""))
	if s == "" {
		return nil, false
	}

	var candidates []string
	if strings.Contains(s, ",") {
		for _, part := range strings.Split(s, ",") {
			candidates = append(candidates, part)
		}
	} else {
		tokens := strings.Fields(s)
		switch {
		case len(tokens) <= 2:
			candidates = []string{s}
		case len(tokens)%2 == 0:
			for i := 0; i < len(tokens); i += 2 {
				candidates = append(candidates, tokens[i]+" "+tokens[i+1])
			}
		default:
			heuristic = true
			candidates = tokens
		}
	}

	seen := make(map[string]bool)
	for _, c := range candidates {
		name := strings.Join(strings.Fields(c), " ")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}
	return names, heuristic
}

// EnsureName appends name to names unless an equivalent entry already exists.
func EnsureName(names []string, name string) []string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return names
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return names
		}
	}
	return append(names, name)
}

// SameName reports case-insensitive equality of trimmed names.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ContainsName reports whether the raw list text mentions name as a
// case-insensitive substring. Mirrors the loose involvement check used for
// PBP and spiff rows.
func ContainsName(rawList, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(rawList), strings.ToLower(name))
}
