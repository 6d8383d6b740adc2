package calc

import (
	"fmt"
	"strings"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Bracket is one tier of the lead-set commission schedule.
type Bracket struct {
	Floor float64 // inclusive
	Rate  float64
	Label string
}

// Brackets are half-open: [1, 10000) at 2%, [10000, 30000) at 3%,
// [30000, inf) at 4%. Revenue under $1 earns nothing.
var leadBrackets = []Bracket{
	{30000, 0.04, "$30,000+"},
	{10000, 0.03, "$10,000-$29,999"},
	{1, 0.02, "under $10,000"},
}

// LeadRate returns the bracket for the given revenue, or ok=false when the
// revenue is below the lowest floor.
func LeadRate(revenue float64) (Bracket, bool) {
	for _, b := range leadBrackets {
		if revenue >= b.Floor {
			return b, true
		}
	}
	return Bracket{}, false
}

// ComputeLeadSet runs the Lead Set category for one technician: per-entry
// tiered commission on the revenue of leads the technician sold, plus the
// aggregate sale and commission sums.
func ComputeLeadSet(t *models.Technician, entries []models.LeadEntry) LeadSetResult {
	if !roster.Eligible(t, models.CategoryLeadSet) {
		return LeadSetResult{Result: skipped(models.CategoryLeadSet, eligibilityReason(t))}
	}

	var out LeadSetResult
	var lines []models.ComputedLine
	for _, e := range entries {
		if !parse.SameName(e.SoldBy, t.Name) {
			continue
		}
		// The sale aggregate covers every lead the technician sold, even
		// ones below the commission floor.
		out.Sale += e.Revenue

		bracket, ok := LeadRate(e.Revenue)
		if !ok {
			continue
		}
		commission := parse.Round2(e.Revenue * bracket.Rate)

		note := fmt.Sprintf("%.0f%% commission on $%s (%s)",
			bracket.Rate*100, formatThousands(e.Revenue), bracket.Label)
		if orig := strings.TrimSpace(e.Notes); orig != "" {
			note += "; " + orig
		}

		lines = append(lines, models.ComputedLine{
			Customer:     e.Customer,
			BusinessUnit: e.BusinessUnit,
			Date:         e.CompletionDate,
			Amount:       commission,
			Notes:        note,
			Category:     models.CategoryLeadSet,
		})
		out.Commission += commission
	}
	out.Result = finalize(models.CategoryLeadSet, lines)
	return out
}

// formatThousands renders a money amount with comma grouping and no cents
// when the amount is whole.
func formatThousands(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, ".00")
	var frac string
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = s[i:]
		s = s[:i]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s + frac
}
