package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Physical layout of the spreadsheet backend. Roster columns and ledger
// summary rows are fixed; category lines occupy columns E-J of the block
// starting at ledgerLinesRow.
const (
	rosterDataRange  = "A2:J"
	payPeriodCell    = "F1"
	rosterNameCol    = 0
	rosterPayColName = "I" // column 9

	ledgerLinesRow   = 20
	ledgerLinesRange = "E20:J"
)

// Summary cell addresses on a technician ledger sheet.
var summaryCells = []string{
	"B4",  // base rate
	"B6",  // regular hours
	"B7",  // overtime hours
	"B8",  // PTO hours
	"B9",  // total hourly pay
	"B11", // spiff/bonus
	"B12", // yard sign
	"B13", // total install pay
	"B14", // lead set sale
	"C14", // lead set commission
	"B15", // call-by-call average
	"C15", // kpi bonus
	"B16", // completed revenue
	"B17", // total sales
	"B18", // total pay
}

// Sheets is the Google Sheets provider, the canonical backend. The KPI
// source may live in a second spreadsheet addressed by kpiSpreadsheetID.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	kpiSheetID    string // optional external KPI spreadsheet
	kpiTable      string
	log           *logrus.Entry
}

// NewSheets builds a provider over one spreadsheet. credentialsFile may be
// empty when ambient application-default credentials are available.
func NewSheets(ctx context.Context, spreadsheetID, kpiSheetID, kpiTable, credentialsFile string, log *logrus.Entry) (*Sheets, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, Backend("sheets", err)
	}
	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		kpiSheetID:    kpiSheetID,
		kpiTable:      kpiTable,
		log:           log,
	}, nil
}

func (s *Sheets) ListRoster(ctx context.Context) ([]models.RosterRow, error) {
	rows, err := s.read(ctx, s.spreadsheetID, TableRoster+"!"+rosterDataRange)
	if err != nil {
		return nil, err
	}
	out := make([]models.RosterRow, 0, len(rows))
	for _, row := range rows {
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

func (s *Sheets) PayPeriodText(ctx context.Context) (string, error) {
	rows, err := s.read(ctx, s.spreadsheetID, TableRoster+"!"+payPeriodCell)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", nil
	}
	return cellAt(rows[0], 0), nil
}

// ReadTable bulk-reads one table; one API call per table per run. The KPI
// table routes to the external spreadsheet when configured.
func (s *Sheets) ReadTable(ctx context.Context, name string) ([][]string, error) {
	spreadsheet := s.spreadsheetID
	if name == s.kpiTable && s.kpiSheetID != "" {
		spreadsheet = s.kpiSheetID
	}
	return s.read(ctx, spreadsheet, name)
}

func (s *Sheets) ReadLedger(ctx context.Context, tech string) (*models.TechnicianLedger, error) {
	ranges := make([]string, 0, len(summaryCells)+1)
	for _, c := range summaryCells {
		ranges = append(ranges, quoteSheet(tech)+"!"+c)
	}
	ranges = append(ranges, quoteSheet(tech)+"!"+ledgerLinesRange)

	resp, err := s.svc.Spreadsheets.Values.BatchGet(s.spreadsheetID).
		Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, NotFound(tech)
		}
		return nil, Backend(tech, err)
	}

	l := &models.TechnicianLedger{Technician: tech}
	cells := make([]float64, len(summaryCells))
	for i := 0; i < len(summaryCells) && i < len(resp.ValueRanges); i++ {
		cells[i] = moneyCell(resp.ValueRanges[i])
	}
	sum := &l.Summary
	sum.BaseRate, sum.RegularHours, sum.OvertimeHours, sum.PTOHours = cells[0], cells[1], cells[2], cells[3]
	sum.TotalHourlyPay, sum.Bonus, sum.YardSignSpiff, sum.TotalInstallPay = cells[4], cells[5], cells[6], cells[7]
	sum.LeadSetSale, sum.LeadSetCommission = cells[8], cells[9]
	sum.CallByCallScore, sum.KPIBonus = cells[10], cells[11]
	sum.CompletedRevenue, sum.TotalSales, sum.TotalPay = cells[12], cells[13], cells[14]

	if len(resp.ValueRanges) > len(summaryCells) {
		for _, row := range resp.ValueRanges[len(summaryCells)].Values {
			line := models.ComputedLine{
				Customer:     valueAt(row, 0),
				BusinessUnit: valueAt(row, 1),
				Date:         valueAt(row, 2),
				Notes:        valueAt(row, 4),
				Category:     models.Category(valueAt(row, 5)),
			}
			if line.Customer == "" && line.Category == "" {
				continue
			}
			if amount, err := parse.Money(valueAt(row, 3)); err == nil {
				line.Amount = amount
			}
			l.Lines = append(l.Lines, line)
		}
	}
	return l, nil
}

// WriteLedger replaces the whole line block and all summary cells in one
// batch update, then re-applies the date and money display formats. The
// single batch keeps the ledger write atomic from the reader's view.
func (s *Sheets) WriteLedger(ctx context.Context, tech string, ledger *models.TechnicianLedger) error {
	sheet := quoteSheet(tech)

	lineRows := make([][]interface{}, 0, len(ledger.Lines)+1)
	for _, line := range ledger.Lines {
		lineRows = append(lineRows, []interface{}{
			line.Customer, line.BusinessUnit, line.Date, line.Amount, line.Notes, string(line.Category),
		})
	}

	sum := ledger.Summary
	summaryValues := []float64{
		sum.BaseRate, sum.RegularHours, sum.OvertimeHours, sum.PTOHours,
		sum.TotalHourlyPay, sum.Bonus, sum.YardSignSpiff, sum.TotalInstallPay,
		sum.LeadSetSale, sum.LeadSetCommission,
		sum.CallByCallScore, sum.KPIBonus,
		sum.CompletedRevenue, sum.TotalSales, sum.TotalPay,
	}

	data := make([]*sheets.ValueRange, 0, len(summaryCells)+1)
	for i, cell := range summaryCells {
		data = append(data, &sheets.ValueRange{
			Range:  sheet + "!" + cell,
			Values: [][]interface{}{{summaryValues[i]}},
		})
	}
	data = append(data, &sheets.ValueRange{
		Range:  sheet + "!" + ledgerLinesRange,
		Values: lineRows,
	})

	// Clear the old block first so a shrinking ledger leaves no stale rows.
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, sheet+"!"+ledgerLinesRange,
		&sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		if isMissingSheet(err) {
			return NotFound(tech)
		}
		return Backend(tech, err)
	}

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return Backend(tech, err)
	}

	if err := s.applyFormats(ctx, tech, len(lineRows)); err != nil {
		// Formatting is cosmetic; the values are already committed.
		s.log.WithError(err).WithField("technician", tech).Warn("sheets: number format update failed")
	}
	return nil
}

// applyFormats sets MM/DD/YYYY on the date column and $#,##0.00 on the
// amount column of the written block.
func (s *Sheets) applyFormats(ctx context.Context, tech string, rows int) error {
	if rows == 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx, tech)
	if err != nil {
		return err
	}

	format := func(startCol int64, pattern, typ string) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    ledgerLinesRow - 1,
					EndRowIndex:      int64(ledgerLinesRow - 1 + rows),
					StartColumnIndex: startCol,
					EndColumnIndex:   startCol + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: typ, Pattern: pattern},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			format(6, "MM/DD/YYYY", "DATE"),     // column G: date
			format(7, "$#,##0.00", "CURRENCY"), // column H: amount
		},
	}).Context(ctx).Do()
	return err
}

func (s *Sheets) UpdateRosterPay(ctx context.Context, tech string, totalPay float64) error {
	rows, err := s.read(ctx, s.spreadsheetID, TableRoster+"!A2:A")
	if err != nil {
		return err
	}
	rowIdx := -1
	for i, row := range rows {
		if strings.EqualFold(strings.TrimSpace(cellAt(row, rosterNameCol)), strings.TrimSpace(tech)) {
			rowIdx = i + 2 // data starts at row 2
			break
		}
	}
	if rowIdx == -1 {
		return NotFound(tech)
	}

	target := fmt.Sprintf("%s!%s%d", TableRoster, rosterPayColName, rowIdx)
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, &sheets.ValueRange{
		Values: [][]interface{}{{totalPay}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return Backend(tech, err)
	}
	return nil
}

func (s *Sheets) read(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, NotFound(readRange)
		}
		return nil, Backend(readRange, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (s *Sheets) sheetID(ctx context.Context, title string) (int64, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && strings.EqualFold(sh.Properties.Title, title) {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, NotFound(title)
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func isMissingSheet(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unable to parse range") || strings.Contains(msg, "not found")
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func valueAt(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func moneyCell(vr *sheets.ValueRange) float64 {
	if vr == nil || len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return 0
	}
	v, err := parse.Money(fmt.Sprint(vr.Values[0][0]))
	if err != nil {
		return 0
	}
	return v
}
