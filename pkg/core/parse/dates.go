package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Spreadsheet serial day 0 (the Lotus epoch used by Sheets and Excel).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	slashDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	underscoreRe = regexp.MustCompile(`^(\d{1,2})_(\d{1,2})_(\d{2,4})$`)
)

// Date parses a date cell in any of the shapes the sources produce: ISO
// (2006-01-02 or RFC3339), MM/DD[/YYYY], MM_DD_YY, or a spreadsheet serial
// number. ref supplies the year for year-less MM/DD values.
func Date(raw string, ref time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}

	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return assemble(m[1], m[2], m[3], ref)
	}
	if m := underscoreRe.FindStringSubmatch(s); m != nil {
		return assemble(m[1], m[2], m[3], ref)
	}

	// Spreadsheet serial: days since 1899-12-30, fractional part is time of day.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 25569 && serial < 80000 {
		return day(serialEpoch.Add(time.Duration(serial * float64(24*time.Hour)))), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// FormatDate renders the canonical MM/DD/YYYY display form. Unparseable
// inputs pass through untouched so source text is never destroyed.
func FormatDate(raw string, ref time.Time) string {
	t, err := Date(raw, ref)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return t.Format("01/02/2006")
}

// PayPeriod parses the pay-period display text. Accepted shapes are a range
// "MM/DD[/YY] - MM/DD[/YY]" or a single "MM_DD_YY" end date. Undefined or
// unparseable values default to the trailing 7 days ending at ref.
func PayPeriod(label string, ref time.Time) models.PayPeriod {
	p := models.PayPeriod{Label: strings.TrimSpace(label)}

	if parts := strings.Split(p.Label, "-"); len(parts) == 2 {
		start, errS := Date(strings.TrimSpace(parts[0]), ref)
		end, errE := Date(strings.TrimSpace(parts[1]), ref)
		if errS == nil && errE == nil {
			if !slashHasYear(parts[0]) {
				// A year-less start borrows the end's year.
				if slashHasYear(parts[1]) {
					start = time.Date(end.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
				}
				// A December-to-January period straddles the year boundary:
				// an inferred start landing after the end belongs to the
				// year before it.
				if start.After(end) {
					start = start.AddDate(-1, 0, 0)
				}
			}
			if !start.After(end) {
				p.Start, p.End = start, end
				return p
			}
		}
	}

	if end, err := Date(p.Label, ref); err == nil {
		p.Start, p.End = end.AddDate(0, 0, -6), end
		return p
	}

	end := day(ref)
	p.Start, p.End = end.AddDate(0, 0, -6), end
	return p
}

func slashHasYear(s string) bool {
	m := slashDateRe.FindStringSubmatch(strings.TrimSpace(s))
	return m != nil && m[3] != ""
}

func assemble(mm, dd, yy string, ref time.Time) (time.Time, error) {
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %q", mm)
	}
	dayN, err := strconv.Atoi(dd)
	if err != nil || dayN < 1 || dayN > 31 {
		return time.Time{}, fmt.Errorf("invalid day %q", dd)
	}
	year := ref.Year()
	if yy != "" {
		year, err = strconv.Atoi(yy)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year %q", yy)
		}
		if year < 100 {
			year += 2000
		}
	}
	return time.Date(year, time.Month(month), dayN, 0, 0, 0, 0, time.UTC), nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
