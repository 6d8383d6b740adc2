package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Excel is an XLSX workbook provider for offline pay periods. The workbook
// mirrors the spreadsheet layout: a Main sheet, one sheet per input table,
// and one ledger sheet per technician. Writes are saved back to the file
// after each ledger so a cancelled run keeps completed technicians.
type Excel struct {
	mu   sync.Mutex
	file *excelize.File
	path string
}

// OpenExcel opens a workbook-backed provider.
func OpenExcel(path string) (*Excel, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Backend(path, err)
	}
	return &Excel{file: f, path: path}, nil
}

// Close releases the workbook handle.
func (e *Excel) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Close()
}

func (e *Excel) ListRoster(ctx context.Context) ([]models.RosterRow, error) {
	rows, err := e.rows(TableRoster)
	if err != nil {
		return nil, err
	}
	var out []models.RosterRow
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		out = append(out, models.RosterRow{
			Name:          cellAt(row, 0),
			Department:    cellAt(row, 1),
			Position:      cellAt(row, 2),
			BaseRateRaw:   cellAt(row, 3),
			ExemptRaw:     cellAt(row, 4),
			CommissionRaw: cellAt(row, 7),
			PayRaw:        cellAt(row, 8),
		})
	}
	return out, nil
}

func (e *Excel) PayPeriodText(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.file.GetCellValue(TableRoster, payPeriodCell)
	if err != nil {
		return "", Backend(TableRoster, err)
	}
	return strings.TrimSpace(v), nil
}

func (e *Excel) ReadTable(ctx context.Context, name string) ([][]string, error) {
	return e.rows(name)
}

func (e *Excel) ReadLedger(ctx context.Context, tech string) (*models.TechnicianLedger, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sheet, ok := e.findSheet(tech)
	if !ok {
		return nil, NotFound(tech)
	}

	l := &models.TechnicianLedger{Technician: tech}
	get := func(cell string) float64 {
		v, _ := e.file.GetCellValue(sheet, cell)
		f, err := parse.Money(v)
		if err != nil {
			return 0
		}
		return f
	}
	sum := &l.Summary
	sum.BaseRate, sum.RegularHours, sum.OvertimeHours, sum.PTOHours = get("B4"), get("B6"), get("B7"), get("B8")
	sum.TotalHourlyPay, sum.Bonus, sum.YardSignSpiff, sum.TotalInstallPay = get("B9"), get("B11"), get("B12"), get("B13")
	sum.LeadSetSale, sum.LeadSetCommission = get("B14"), get("C14")
	sum.CallByCallScore, sum.KPIBonus = get("B15"), get("C15")
	sum.CompletedRevenue, sum.TotalSales, sum.TotalPay = get("B16"), get("B17"), get("B18")

	for row := ledgerLinesRow; ; row++ {
		cell := func(col string) string {
			v, _ := e.file.GetCellValue(sheet, fmt.Sprintf("%s%d", col, row))
			return strings.TrimSpace(v)
		}
		customer, tag := cell("E"), cell("J")
		if customer == "" && tag == "" {
			break
		}
		line := models.ComputedLine{
			Customer:     customer,
			BusinessUnit: cell("F"),
			Date:         cell("G"),
			Notes:        cell("I"),
			Category:     models.Category(tag),
		}
		if amount, err := parse.Money(cell("H")); err == nil {
			line.Amount = amount
		}
		l.Lines = append(l.Lines, line)
	}
	return l, nil
}

func (e *Excel) WriteLedger(ctx context.Context, tech string, ledger *models.TechnicianLedger) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	sheet, ok := e.findSheet(tech)
	if !ok {
		return NotFound(tech)
	}

	// Clear the old block through the first fully blank row.
	for row := ledgerLinesRow; ; row++ {
		customer, _ := e.file.GetCellValue(sheet, fmt.Sprintf("E%d", row))
		tag, _ := e.file.GetCellValue(sheet, fmt.Sprintf("J%d", row))
		if strings.TrimSpace(customer) == "" && strings.TrimSpace(tag) == "" {
			break
		}
		for _, col := range []string{"E", "F", "G", "H", "I", "J"} {
			if err := e.file.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), ""); err != nil {
				return Backend(tech, err)
			}
		}
	}

	moneyStyle, err := e.file.NewStyle(&excelize.Style{CustomNumFmt: strPtr("$#,##0.00")})
	if err != nil {
		return Backend(tech, err)
	}
	for i, line := range ledger.Lines {
		row := ledgerLinesRow + i
		values := map[string]interface{}{
			"E": line.Customer,
			"F": line.BusinessUnit,
			"G": line.Date,
			"H": line.Amount,
			"I": line.Notes,
			"J": string(line.Category),
		}
		for col, v := range values {
			if err := e.file.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v); err != nil {
				return Backend(tech, err)
			}
		}
		if err := e.file.SetCellStyle(sheet,
			fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), moneyStyle); err != nil {
			return Backend(tech, err)
		}
	}

	sum := ledger.Summary
	summary := map[string]float64{
		"B4": sum.BaseRate, "B6": sum.RegularHours, "B7": sum.OvertimeHours, "B8": sum.PTOHours,
		"B9": sum.TotalHourlyPay, "B11": sum.Bonus, "B12": sum.YardSignSpiff, "B13": sum.TotalInstallPay,
		"B14": sum.LeadSetSale, "C14": sum.LeadSetCommission,
		"B15": sum.CallByCallScore, "C15": sum.KPIBonus,
		"B16": sum.CompletedRevenue, "B17": sum.TotalSales, "B18": sum.TotalPay,
	}
	for cell, v := range summary {
		if err := e.file.SetCellValue(sheet, cell, v); err != nil {
			return Backend(tech, err)
		}
	}

	if err := e.file.SaveAs(e.path); err != nil {
		return Backend(tech, err)
	}
	return nil
}

func (e *Excel) UpdateRosterPay(ctx context.Context, tech string, totalPay float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.file.GetRows(TableRoster)
	if err != nil {
		return Backend(TableRoster, err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if strings.EqualFold(cellAt(row, 0), strings.TrimSpace(tech)) {
			cell := fmt.Sprintf("%s%d", rosterPayColName, i+1)
			if err := e.file.SetCellValue(TableRoster, cell, totalPay); err != nil {
				return Backend(tech, err)
			}
			if err := e.file.SaveAs(e.path); err != nil {
				return Backend(tech, err)
			}
			return nil
		}
	}
	return NotFound(tech)
}

func (e *Excel) rows(name string) ([][]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sheet, ok := e.findSheet(name)
	if !ok {
		return nil, NotFound(name)
	}
	rows, err := e.file.GetRows(sheet)
	if err != nil {
		return nil, Backend(name, err)
	}
	return rows, nil
}

// findSheet matches a sheet name case-insensitively; workbook authors are
// not consistent about casing.
func (e *Excel) findSheet(name string) (string, bool) {
	for _, s := range e.file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return "", false
}

func strPtr(s string) *string { return &s }
