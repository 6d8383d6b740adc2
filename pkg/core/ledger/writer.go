// Package ledger materializes calculator results into a technician ledger:
// category line blocks, summary cells, and the derived pay totals.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/calc"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

const overtimeMultiplier = 1.5

// ApplyLines replaces the ledger's block for one category with the given
// lines. Rows tagged with other categories are never touched: the new block
// takes the position of the old one, or appends when the category had no
// rows. Dates are normalized to MM/DD/YYYY on the way in; ref supplies the
// year for year-less source dates.
func ApplyLines(l *models.TechnicianLedger, cat models.Category, lines []models.ComputedLine, ref time.Time) {
	for i := range lines {
		lines[i].Category = cat
		lines[i].Date = parse.FormatDate(lines[i].Date, ref)
	}

	insertAt := -1
	kept := make([]models.ComputedLine, 0, len(l.Lines))
	for _, line := range l.Lines {
		if line.Category == cat {
			if insertAt == -1 {
				insertAt = len(kept)
			}
			continue
		}
		kept = append(kept, line)
	}
	if insertAt == -1 {
		insertAt = len(kept)
	}

	out := make([]models.ComputedLine, 0, len(kept)+len(lines))
	out = append(out, kept[:insertAt]...)
	out = append(out, lines...)
	out = append(out, kept[insertAt:]...)
	l.Lines = out
}

// ApplySpiff writes the Spiff/Bonus block and summary cell.
func ApplySpiff(l *models.TechnicianLedger, res calc.Result, ref time.Time) {
	ApplyLines(l, models.CategorySpiff, res.Lines, ref)
	l.Summary.Bonus = parse.Round2(res.Total.Amount)
}

// ApplyPBP writes the PBP block; the category total carries into the Total
// Install Pay summary cell.
func ApplyPBP(l *models.TechnicianLedger, res calc.Result, ref time.Time) {
	ApplyLines(l, models.CategoryPBP, res.Lines, ref)
	l.Summary.TotalInstallPay = parse.Round2(res.Total.Amount)
}

// ApplyKPI writes the KPI average, bonus cell and the bonus line (when the
// threshold fired).
func ApplyKPI(l *models.TechnicianLedger, res calc.KPIResult, ref time.Time) {
	ApplyLines(l, models.CategoryKPI, res.Lines, ref)
	l.Summary.CallByCallScore = res.Average
	l.Summary.KPIBonus = res.Bonus
}

// ApplyYardSign writes the Yard Sign block and summary cell.
func ApplyYardSign(l *models.TechnicianLedger, res calc.Result, ref time.Time) {
	ApplyLines(l, models.CategoryYardSign, res.Lines, ref)
	l.Summary.YardSignSpiff = parse.Round2(res.Total.Amount)
}

// ApplyTimesheet writes the hour sums. Timesheet has no line block.
func ApplyTimesheet(l *models.TechnicianLedger, res calc.TimesheetResult) {
	l.Summary.RegularHours = res.RegularHours
	l.Summary.OvertimeHours = res.OvertimeHours
}

// ApplyService copies the service metrics; a missing row leaves the cells
// untouched.
func ApplyService(l *models.TechnicianLedger, res calc.ServiceResult) {
	if !res.Found {
		return
	}
	l.Summary.TotalSales = parse.Round2(res.TotalSales)
	l.Summary.CompletedRevenue = parse.Round2(res.CompletedRevenue)
}

// ApplyLeadSet writes the Lead Set block plus the aggregate sale and
// commission cells.
func ApplyLeadSet(l *models.TechnicianLedger, res calc.LeadSetResult, ref time.Time) {
	ApplyLines(l, models.CategoryLeadSet, res.Lines, ref)
	l.Summary.LeadSetSale = parse.Round2(res.Sale)
	l.Summary.LeadSetCommission = parse.Round2(res.Commission)
}

// FinalizeTotals derives the hourly and total pay cells. Runs after every
// category for the technician has been applied.
func FinalizeTotals(l *models.TechnicianLedger, t *models.Technician) {
	s := &l.Summary
	s.BaseRate = t.BaseRate
	s.TotalHourlyPay = parse.Round2(
		t.BaseRate*s.RegularHours + overtimeMultiplier*t.BaseRate*s.OvertimeHours)
	s.TotalPay = parse.Round2(
		s.TotalHourlyPay + s.Bonus + s.YardSignSpiff + s.TotalInstallPay +
			s.LeadSetCommission + s.KPIBonus)
}

// FormatMoney renders an amount in the ledger's $#,##0.00 display format.
// Negative amounts keep the sign ahead of the dollar.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	return sign + "$" + whole + frac
}
