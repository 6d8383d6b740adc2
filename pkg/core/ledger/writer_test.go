package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/calc"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

var ref = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func line(cat models.Category, customer string, amount float64) models.ComputedLine {
	return models.ComputedLine{Customer: customer, Amount: amount, Category: cat}
}

func TestApplyLinesReplacesOnlyOwnBlock(t *testing.T) {
	l := &models.TechnicianLedger{
		Technician: "Kim Cho",
		Lines: []models.ComputedLine{
			line(models.CategorySpiff, "old-spiff", 10),
			line(models.CategoryPBP, "pbp-1", 100),
			line(models.CategoryPBP, "pbp-2", 200),
			line(models.CategoryYardSign, "ys-1", 10),
		},
	}

	ApplyLines(l, models.CategoryPBP, []models.ComputedLine{
		line(models.CategoryPBP, "pbp-new", 300),
	}, ref)

	require.Len(t, l.Lines, 3)
	assert.Equal(t, "old-spiff", l.Lines[0].Customer)
	assert.Equal(t, "pbp-new", l.Lines[1].Customer)
	assert.Equal(t, "ys-1", l.Lines[2].Customer)
}

func TestApplyLinesAppendsWhenBlockAbsent(t *testing.T) {
	l := &models.TechnicianLedger{
		Lines: []models.ComputedLine{line(models.CategorySpiff, "s", 10)},
	}

	ApplyLines(l, models.CategoryLeadSet, []models.ComputedLine{
		line(models.CategoryLeadSet, "ls", 100),
	}, ref)

	require.Len(t, l.Lines, 2)
	assert.Equal(t, "ls", l.Lines[1].Customer)
}

func TestApplyLinesClearsBlock(t *testing.T) {
	l := &models.TechnicianLedger{
		Lines: []models.ComputedLine{
			line(models.CategoryPBP, "pbp", 100),
			line(models.CategorySpiff, "s", 10),
		},
	}

	ApplyLines(l, models.CategoryPBP, nil, ref)

	require.Len(t, l.Lines, 1)
	assert.Equal(t, "s", l.Lines[0].Customer)
}

func TestApplyLinesNormalizesDates(t *testing.T) {
	l := &models.TechnicianLedger{}
	ApplyLines(l, models.CategoryPBP, []models.ComputedLine{
		{Customer: "a", Date: "6/3/24", Category: models.CategoryPBP},
	}, ref)
	assert.Equal(t, "06/03/2024", l.Lines[0].Date)
}

func TestSummaryMirrorsCategoryTotals(t *testing.T) {
	l := &models.TechnicianLedger{Technician: "Kim Cho"}

	ApplySpiff(l, calc.Result{
		Lines: []models.ComputedLine{line(models.CategorySpiff, "a", 50), line(models.CategorySpiff, "b", 25)},
		Total: models.CategoryTotal{Category: models.CategorySpiff, Count: 2, Amount: 75},
	}, ref)
	ApplyPBP(l, calc.Result{
		Lines: []models.ComputedLine{line(models.CategoryPBP, "c", 260)},
		Total: models.CategoryTotal{Category: models.CategoryPBP, Count: 1, Amount: 260},
	}, ref)
	ApplyLeadSet(l, calc.LeadSetResult{
		Result: calc.Result{
			Lines: []models.ComputedLine{line(models.CategoryLeadSet, "d", 100)},
			Total: models.CategoryTotal{Category: models.CategoryLeadSet, Count: 1, Amount: 100},
		},
		Sale:       5000,
		Commission: 100,
	}, ref)

	assert.Equal(t, 75.00, l.Summary.Bonus)
	assert.Equal(t, 260.00, l.Summary.TotalInstallPay)
	assert.Equal(t, 5000.00, l.Summary.LeadSetSale)
	assert.Equal(t, 100.00, l.Summary.LeadSetCommission)

	for _, cat := range []models.Category{models.CategorySpiff, models.CategoryPBP, models.CategoryLeadSet} {
		sum := 0.0
		for _, ln := range l.LinesFor(cat) {
			sum += ln.Amount
		}
		var want float64
		switch cat {
		case models.CategorySpiff:
			want = l.Summary.Bonus
		case models.CategoryPBP:
			want = l.Summary.TotalInstallPay
		case models.CategoryLeadSet:
			want = l.Summary.LeadSetCommission
		}
		assert.Equal(t, want, sum, cat)
	}
}

func TestApplyServiceMissingRowLeavesCells(t *testing.T) {
	l := &models.TechnicianLedger{}
	l.Summary.TotalSales = 999
	l.Summary.CompletedRevenue = 888

	ApplyService(l, calc.ServiceResult{Found: false})
	assert.Equal(t, 999.00, l.Summary.TotalSales)
	assert.Equal(t, 888.00, l.Summary.CompletedRevenue)

	ApplyService(l, calc.ServiceResult{TotalSales: 12000, CompletedRevenue: 9500, Found: true})
	assert.Equal(t, 12000.00, l.Summary.TotalSales)
	assert.Equal(t, 9500.00, l.Summary.CompletedRevenue)
}

func TestFinalizeTotals(t *testing.T) {
	tech := &models.Technician{Name: "Kim Cho", BaseRate: 30}
	l := &models.TechnicianLedger{Technician: "Kim Cho"}
	ApplyTimesheet(l, calc.TimesheetResult{RegularHours: 40, OvertimeHours: 2})
	l.Summary.Bonus = 75
	l.Summary.YardSignSpiff = 35
	l.Summary.TotalInstallPay = 260
	l.Summary.LeadSetCommission = 100
	l.Summary.KPIBonus = 100

	FinalizeTotals(l, tech)

	// 30*40 + 1.5*30*2 = 1290
	assert.Equal(t, 30.00, l.Summary.BaseRate)
	assert.Equal(t, 1290.00, l.Summary.TotalHourlyPay)
	assert.Equal(t, 1860.00, l.Summary.TotalPay)
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{10, "$10.00"},
		{1234.5, "$1,234.50"},
		{1234567.89, "$1,234,567.89"},
		{-42.1, "-$42.10"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
