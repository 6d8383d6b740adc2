package calc

import (
	"fmt"
	"strings"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

const (
	kpiBonusThreshold = 0.90
	kpiBonusAmount    = 100
)

// KPIIndex is the per-run cache of Call-By-Call entries keyed by normalized
// technician name. Built once from the external report, then reused for
// every technician in the run.
type KPIIndex struct {
	byTech map[string][]models.KPIEntry
}

// NewKPIIndex indexes the decoded entries by technician.
func NewKPIIndex(entries []models.KPIEntry) *KPIIndex {
	idx := &KPIIndex{byTech: make(map[string][]models.KPIEntry)}
	for _, e := range entries {
		key := normalizeName(e.Technician)
		idx.byTech[key] = append(idx.byTech[key], e)
	}
	return idx
}

// ComputeKPI averages the technician's non-zero Call-By-Call percentages
// inside the pay period and applies the threshold bonus. When the bonus
// fires it is recorded as a single category line so the ledger invariant
// (line sum equals summary amount) holds for KPI like every other category.
func (idx *KPIIndex) ComputeKPI(t *models.Technician, period models.PayPeriod) KPIResult {
	var out KPIResult
	var sum float64
	for _, e := range idx.byTech[normalizeName(t.Name)] {
		if !period.Contains(e.Date) {
			continue
		}
		if e.Percentage == 0 {
			continue
		}
		sum += e.Percentage
		out.Samples++
	}
	if out.Samples > 0 {
		out.Average = sum / float64(out.Samples)
	}

	var lines []models.ComputedLine
	if out.Average > kpiBonusThreshold {
		out.Bonus = kpiBonusAmount
		lines = append(lines, models.ComputedLine{
			Date:     period.End.Format("01/02/2006"),
			Amount:   kpiBonusAmount,
			Notes:    fmt.Sprintf("Call-By-Call avg %.2f%% over %d scored days", out.Average*100, out.Samples),
			Category: models.CategoryKPI,
		})
	}
	out.Result = finalize(models.CategoryKPI, lines)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
