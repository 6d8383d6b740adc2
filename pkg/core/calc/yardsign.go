package calc

import (
	"strings"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

const (
	yardSignWithPicAmount = 25
	yardSignAmount        = 10
)

// ComputeYardSign runs the Yard Sign category for one technician. The tag
// decides the per-install amount: "yard sign w/ pic" pays 25, anything else
// pays the base 10.
func ComputeYardSign(t *models.Technician, entries []models.YardSignEntry) Result {
	if !roster.Eligible(t, models.CategoryYardSign) {
		return skipped(models.CategoryYardSign, eligibilityReason(t))
	}

	var lines []models.ComputedLine
	for _, e := range entries {
		if !parse.ContainsName(e.AssignedRaw, t.Name) {
			continue
		}
		amount := float64(yardSignAmount)
		note := "Yard sign"
		if strings.Contains(strings.ToLower(e.Tags), "yard sign w/ pic") {
			amount = yardSignWithPicAmount
			note = "Yard sign w/ pic"
		}
		lines = append(lines, models.ComputedLine{
			Customer:     e.Customer,
			BusinessUnit: e.BusinessUnit,
			Date:         e.CompletionDate,
			Amount:       amount,
			Notes:        note,
			Category:     models.CategoryYardSign,
		})
	}
	return finalize(models.CategoryYardSign, lines)
}
