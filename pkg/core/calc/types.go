// Package calc provides the deterministic category calculators of the
// compensation engine: PBP, Spiff/Bonus, Yard Sign, Lead Set, Timesheet,
// KPI and Service. Calculators consume read-only input rows and return
// typed results; they never touch the ledger backend.
package calc

import (
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Result is the common calculator output: ordered lines in source order plus
// the category total. An ineligible technician yields Skipped with zero
// totals; that is not an error.
type Result struct {
	Lines   []models.ComputedLine
	Total   models.CategoryTotal
	Skipped bool
	Reason  string
}

// skipped builds an empty result for an eligibility short-circuit.
func skipped(cat models.Category, reason string) Result {
	return Result{
		Total:   models.CategoryTotal{Category: cat},
		Skipped: true,
		Reason:  reason,
	}
}

// finalize stamps the category total from the collected lines.
func finalize(cat models.Category, lines []models.ComputedLine) Result {
	total := models.CategoryTotal{Category: cat, Count: len(lines)}
	for _, l := range lines {
		total.Amount += l.Amount
	}
	return Result{Lines: lines, Total: total}
}

// TimesheetResult carries the per-period hour sums. Timesheet writes summary
// cells only, no category lines.
type TimesheetResult struct {
	RegularHours  float64
	OvertimeHours float64
}

// KPIResult carries the windowed Call-By-Call average and threshold bonus.
type KPIResult struct {
	Result
	Average float64 // [0,1], zero entries excluded
	Samples int     // non-zero entries inside the window
	Bonus   float64 // 100 when Average > threshold, else 0
}

// LeadSetResult carries the aggregate sale and commission sums.
type LeadSetResult struct {
	Result
	Sale       float64 // Σ revenue
	Commission float64 // Σ commission
}

// ServiceResult carries the copied service metrics. Found=false leaves the
// summary fields untouched.
type ServiceResult struct {
	TotalSales       float64
	CompletedRevenue float64
	Found            bool
}
