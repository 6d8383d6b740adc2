// Package parse holds the normalization functions for the duck-typed cell
// values coming out of the tabular sources: money, percentages, hours, dates
// and technician name lists. Calculators never parse raw cells themselves.
package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money parses a money cell: plain numeric, "$"-prefixed, comma-grouped, or
// parenthesized negatives. Empty cells are an error, not zero, so callers can
// tell "missing" from "0".
func Money(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty money value")
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money value %q: %w", raw, err)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Percent normalizes a percentage cell to [0,1]. Numeric values greater than
// 1 are treated as whole percentages; string values may carry a trailing "%".
func Percent(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty percentage value")
	}
	hadSign := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", raw, err)
	}
	if hadSign || v > 1 {
		v = v / 100
	}
	return v, nil
}

// Hours parses an hours cell. Empty cells count as zero hours.
func Hours(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours value %q: %w", raw, err)
	}
	return v, nil
}

// Bool parses roster-style boolean cells ("TRUE", "yes", "x", "1").
func Bool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "x", "1":
		return true
	}
	return false
}

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
