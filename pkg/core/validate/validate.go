// Package validate checks the internal consistency of a written technician
// ledger: every category line block must sum to its summary cell, and the
// total pay cell must equal the sum of its parts.
package validate

import (
	"fmt"
	"math"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// DefaultTolerance absorbs cent-level rounding in displayed amounts.
const DefaultTolerance = 0.011

// CategoryCheck compares one category's line sum against its summary cell.
type CategoryCheck struct {
	Category models.Category `json:"category"`
	LineSum  float64         `json:"line_sum"`
	Summary  float64         `json:"summary"`
	Delta    float64         `json:"delta"`
	Passed   bool            `json:"passed"`
}

// TotalPayCheck compares the total pay cell against the recomputed sum of
// its components.
type TotalPayCheck struct {
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Delta    float64 `json:"delta"`
	Passed   bool    `json:"passed"`
}

// Report is the full consistency result for one ledger.
type Report struct {
	Technician   string          `json:"technician"`
	Categories   []CategoryCheck `json:"categories"`
	TotalPay     TotalPayCheck   `json:"total_pay"`
	Tolerance    float64         `json:"tolerance"`
	AllPassed    bool            `json:"all_passed"`
	FailedChecks []string        `json:"failed_checks,omitempty"`
}

// Ledger validates one ledger with the default tolerance.
func Ledger(l *models.TechnicianLedger) *Report {
	return LedgerWithTolerance(l, DefaultTolerance)
}

// LedgerWithTolerance validates one ledger. Timesheet and Service carry no
// line block, so only the five line-bearing categories are checked against
// their summary cells.
func LedgerWithTolerance(l *models.TechnicianLedger, tolerance float64) *Report {
	r := &Report{
		Technician: l.Technician,
		Tolerance:  tolerance,
		AllPassed:  true,
	}

	s := l.Summary
	checks := []struct {
		cat     models.Category
		summary float64
	}{
		{models.CategorySpiff, s.Bonus},
		{models.CategoryPBP, s.TotalInstallPay},
		{models.CategoryKPI, s.KPIBonus},
		{models.CategoryYardSign, s.YardSignSpiff},
		{models.CategoryLeadSet, s.LeadSetCommission},
	}
	for _, c := range checks {
		sum := 0.0
		for _, line := range l.LinesFor(c.cat) {
			sum += line.Amount
		}
		check := CategoryCheck{
			Category: c.cat,
			LineSum:  sum,
			Summary:  c.summary,
			Delta:    sum - c.summary,
			Passed:   math.Abs(sum-c.summary) <= tolerance,
		}
		r.Categories = append(r.Categories, check)
		if !check.Passed {
			r.AllPassed = false
			r.FailedChecks = append(r.FailedChecks,
				fmt.Sprintf("%s: line sum %.2f != summary %.2f", c.cat, sum, c.summary))
		}
	}

	expected := s.TotalHourlyPay + s.Bonus + s.YardSignSpiff + s.TotalInstallPay +
		s.LeadSetCommission + s.KPIBonus
	r.TotalPay = TotalPayCheck{
		Expected: expected,
		Actual:   s.TotalPay,
		Delta:    s.TotalPay - expected,
		Passed:   math.Abs(s.TotalPay-expected) <= tolerance,
	}
	if !r.TotalPay.Passed {
		r.AllPassed = false
		r.FailedChecks = append(r.FailedChecks,
			fmt.Sprintf("total pay %.2f != component sum %.2f", s.TotalPay, expected))
	}

	return r
}
