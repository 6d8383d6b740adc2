package calc

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// ComputeSpiff runs the Spiff/Bonus category for one technician. A row
// qualifies when the technician both sold it and is assigned to it, or when
// the sold-by cell is empty and the technician is assigned.
func ComputeSpiff(t *models.Technician, entries []models.SpiffBonusEntry, log *logrus.Entry) Result {
	if !roster.Eligible(t, models.CategorySpiff) {
		return skipped(models.CategorySpiff, eligibilityReason(t))
	}

	var lines []models.ComputedLine
	for i, e := range entries {
		assigned := parse.ContainsName(e.AssignedRaw, t.Name)
		if strings.TrimSpace(e.SoldBy) == "" {
			if !assigned {
				continue
			}
		} else if !parse.SameName(e.SoldBy, t.Name) || !assigned {
			continue
		}

		amount, err := parse.Money(e.BonusRaw)
		if err != nil {
			log.WithField("row", i+2).Warnf("spiff: unreadable bonus %q, skipping row", e.BonusRaw)
			continue
		}
		if amount <= 0 {
			continue
		}

		lines = append(lines, models.ComputedLine{
			Customer:     e.Customer,
			BusinessUnit: e.JobBusinessUnit,
			Date:         e.CompletionDate,
			Amount:       parse.Round2(amount),
			Notes:        e.ItemName,
			Category:     models.CategorySpiff,
		})
	}
	return finalize(models.CategorySpiff, lines)
}

// eligibilityReason names the gate that excluded the technician.
func eligibilityReason(t *models.Technician) string {
	if t.Class == models.Class1 {
		return "Class 1 technician"
	}
	return "apprentice with 0% commission"
}
