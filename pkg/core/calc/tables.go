package calc

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/schema"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Logical field specs for each input table. Aliases are scanned in order;
// fallbacks reflect the historical column layout of each source sheet.

var pbpFields = []schema.Field{
	{Name: "customer", Aliases: []string{"customer"}, Fallback: 0},
	{Name: "business_unit", Aliases: []string{"job business unit", "business unit"}, Fallback: 1},
	{Name: "date", Aliases: []string{"completion date", "date"}, Fallback: 2},
	{Name: "primary", Aliases: []string{"primary technician", "technician"}, Fallback: 3},
	{Name: "assigned", Aliases: []string{"assigned technicians", "assigned"}, Fallback: -1},
	{Name: "item", Aliases: []string{"item name", "item"}, Fallback: 5},
	{Name: "cross_sale", Aliases: []string{"cross sale group", "cross-sale group", "cross sale"}, Fallback: -1},
}

var spiffFields = []schema.Field{
	{Name: "customer", Aliases: []string{"customer"}, Fallback: 0},
	{Name: "business_unit", Aliases: []string{"job business unit", "business unit"}, Fallback: 1},
	{Name: "date", Aliases: []string{"completion date", "date"}, Fallback: 2},
	{Name: "sold_by", Aliases: []string{"sold by"}, Fallback: 3},
	{Name: "assigned", Aliases: []string{"assigned technicians", "assigned"}, Fallback: 4},
	{Name: "item", Aliases: []string{"item name", "item"}, Fallback: 5},
	{Name: "amount", Aliases: []string{"bonus", "spiff", "amount"}, Fallback: 6},
}

var yardSignFields = []schema.Field{
	{Name: "customer", Aliases: []string{"customer"}, Fallback: 0},
	{Name: "job_number", Aliases: []string{"job #", "job number", "job"}, Fallback: 1},
	{Name: "business_unit", Aliases: []string{"business unit"}, Fallback: 2},
	{Name: "date", Aliases: []string{"completion date", "date"}, Fallback: 3},
	{Name: "jobs_total", Aliases: []string{"jobs total", "total"}, Fallback: 4},
	{Name: "tags", Aliases: []string{"tags", "tag"}, Fallback: 5},
	{Name: "assigned", Aliases: []string{"assigned technicians", "assigned"}, Fallback: 6},
}

var leadSetFields = []schema.Field{
	{Name: "customer", Aliases: []string{"customer"}, Fallback: 0},
	{Name: "business_unit", Aliases: []string{"business unit"}, Fallback: 1},
	{Name: "date", Aliases: []string{"completion date", "date"}, Fallback: 2},
	{Name: "revenue", Aliases: []string{"revenue", "jobs total revenue", "amount"}, Fallback: 3},
	{Name: "notes", Aliases: []string{"notes", "note"}, Fallback: 4},
	{Name: "sold_by", Aliases: []string{"sold by technician", "sold by"}, Fallback: 5},
}

var timesheetFields = []schema.Field{
	{Name: "employee", Aliases: []string{"employee name", "employee", "name"}, Fallback: 0},
	{Name: "date", Aliases: []string{"date"}, Fallback: 1},
	{Name: "regular", Aliases: []string{"regular hours", "regular", "reg"}, Fallback: 2},
	{Name: "overtime", Aliases: []string{"overtime hours", "overtime", "ot"}, Fallback: 3},
}

var serviceFields = []schema.Field{
	{Name: "technician", Aliases: []string{"technician", "name"}, Fallback: 0},
	{Name: "total_sales", Aliases: []string{"total sales"}, Fallback: 1},
	{Name: "completed_revenue", Aliases: []string{"completed revenue"}, Fallback: 2},
	{Name: "completed_jobs", Aliases: []string{"completed jobs"}, Fallback: 3},
}

// KPI source layout is fixed by the external report, not header-mapped:
// column 1 technician, 14 date, 16 percentage (1-indexed).
const (
	kpiColTechnician = 0
	kpiColDate       = 13
	kpiColPercentage = 15
)

// DecodePBPTable decodes PBP rows. The cross-sale and assigned columns are
// required; their absence is a SchemaError and the category yields empty
// totals for every technician.
func DecodePBPTable(rows [][]string) ([]models.PBPEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], pbpFields)
	for _, required := range []string{"cross_sale", "assigned"} {
		if !m.Has(required) {
			return nil, &schema.SchemaError{Table: "PBP", Field: required}
		}
	}

	var entries []models.PBPEntry
	for _, row := range rows[1:] {
		e := models.PBPEntry{
			Customer:        m.Cell(row, "customer"),
			JobBusinessUnit: m.Cell(row, "business_unit"),
			CompletionDate:  m.Cell(row, "date"),
			PrimaryTech:     m.Cell(row, "primary"),
			AssignedRaw:     m.Cell(row, "assigned"),
			ItemName:        m.Cell(row, "item"),
			CrossSaleGroup:  m.Cell(row, "cross_sale"),
		}
		if e.Customer == "" && e.CrossSaleGroup == "" && e.AssignedRaw == "" {
			continue // blank padding row
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DecodeSpiffTable decodes Spiff/Bonus rows.
func DecodeSpiffTable(rows [][]string) ([]models.SpiffBonusEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], spiffFields)
	if !m.Has("amount") {
		return nil, &schema.SchemaError{Table: "Spiff/Bonus", Field: "amount"}
	}

	var entries []models.SpiffBonusEntry
	for _, row := range rows[1:] {
		e := models.SpiffBonusEntry{
			Customer:        m.Cell(row, "customer"),
			JobBusinessUnit: m.Cell(row, "business_unit"),
			CompletionDate:  m.Cell(row, "date"),
			SoldBy:          m.Cell(row, "sold_by"),
			AssignedRaw:     m.Cell(row, "assigned"),
			ItemName:        m.Cell(row, "item"),
			BonusRaw:        m.Cell(row, "amount"),
		}
		if e.Customer == "" && e.BonusRaw == "" && e.AssignedRaw == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DecodeYardSignTable decodes Yard Sign rows.
func DecodeYardSignTable(rows [][]string) ([]models.YardSignEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], yardSignFields)
	if !m.Has("assigned") {
		return nil, &schema.SchemaError{Table: "Yard Sign", Field: "assigned"}
	}

	var entries []models.YardSignEntry
	for _, row := range rows[1:] {
		e := models.YardSignEntry{
			Customer:       m.Cell(row, "customer"),
			JobNumber:      m.Cell(row, "job_number"),
			BusinessUnit:   m.Cell(row, "business_unit"),
			CompletionDate: m.Cell(row, "date"),
			JobsTotalRaw:   m.Cell(row, "jobs_total"),
			Tags:           m.Cell(row, "tags"),
			AssignedRaw:    m.Cell(row, "assigned"),
		}
		if e.Customer == "" && e.AssignedRaw == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DecodeLeadSetTable decodes Lead Set rows. Unreadable revenue cells are
// logged and skipped per-row.
func DecodeLeadSetTable(rows [][]string, log *logrus.Entry) ([]models.LeadEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], leadSetFields)
	if !m.Has("revenue") {
		return nil, &schema.SchemaError{Table: "Lead Set", Field: "revenue"}
	}

	var entries []models.LeadEntry
	for i, row := range rows[1:] {
		raw := m.Cell(row, "revenue")
		customer := m.Cell(row, "customer")
		if customer == "" && raw == "" {
			continue
		}
		revenue, err := parse.Money(raw)
		if err != nil {
			log.WithField("row", i+2).Warnf("lead set: unreadable revenue %q, skipping row", raw)
			continue
		}
		entries = append(entries, models.LeadEntry{
			Customer:       customer,
			BusinessUnit:   m.Cell(row, "business_unit"),
			CompletionDate: m.Cell(row, "date"),
			Revenue:        revenue,
			Notes:          m.Cell(row, "notes"),
			SoldBy:         m.Cell(row, "sold_by"),
		})
	}
	return entries, nil
}

// DecodeTimesheetTable decodes timesheet rows. Unreadable hour cells are
// logged and skipped per-row.
func DecodeTimesheetTable(rows [][]string, log *logrus.Entry) ([]models.TimesheetEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], timesheetFields)
	if !m.Has("employee") {
		return nil, &schema.SchemaError{Table: "Time Sheet", Field: "employee"}
	}

	var entries []models.TimesheetEntry
	for i, row := range rows[1:] {
		name := m.Cell(row, "employee")
		if name == "" {
			continue
		}
		reg, errR := parse.Hours(m.Cell(row, "regular"))
		ot, errO := parse.Hours(m.Cell(row, "overtime"))
		if errR != nil || errO != nil {
			log.WithField("row", i+2).Warn("time sheet: unreadable hours, skipping row")
			continue
		}
		entries = append(entries, models.TimesheetEntry{
			EmployeeName:  name,
			Date:          m.Cell(row, "date"),
			RegularHours:  reg,
			OvertimeHours: ot,
		})
	}
	return entries, nil
}

// DecodeServiceTable decodes service-revenue rows.
func DecodeServiceTable(rows [][]string, log *logrus.Entry) ([]models.ServiceEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := schema.Map(rows[0], serviceFields)
	if !m.Has("technician") {
		return nil, &schema.SchemaError{Table: "Service", Field: "technician"}
	}

	var entries []models.ServiceEntry
	for i, row := range rows[1:] {
		name := m.Cell(row, "technician")
		if name == "" {
			continue
		}
		e := models.ServiceEntry{Technician: name}
		var err error
		if raw := m.Cell(row, "total_sales"); raw != "" {
			if e.TotalSales, err = parse.Money(raw); err != nil {
				log.WithField("row", i+2).Warnf("service: unreadable total sales %q", raw)
			}
		}
		if raw := m.Cell(row, "completed_revenue"); raw != "" {
			if e.CompletedRevenue, err = parse.Money(raw); err != nil {
				log.WithField("row", i+2).Warnf("service: unreadable completed revenue %q", raw)
			}
		}
		if raw := m.Cell(row, "completed_jobs"); raw != "" {
			e.CompletedJobs, _ = parse.Hours(raw)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DecodeKPITable decodes the external Call-By-Call report using its fixed
// column layout. Rows with unreadable dates or percentages are skipped.
func DecodeKPITable(rows [][]string, ref time.Time, log *logrus.Entry) []models.KPIEntry {
	var entries []models.KPIEntry
	for i, row := range rows {
		if len(row) <= kpiColPercentage {
			continue
		}
		name := row[kpiColTechnician]
		if i == 0 && looksLikeHeader(name) {
			continue
		}
		if name == "" {
			continue
		}
		date, err := parse.Date(row[kpiColDate], ref)
		if err != nil {
			log.WithField("row", i+1).Warnf("kpi: unreadable date %q, skipping row", row[kpiColDate])
			continue
		}
		pct, err := parse.Percent(row[kpiColPercentage])
		if err != nil {
			log.WithField("row", i+1).Warnf("kpi: unreadable percentage %q, skipping row", row[kpiColPercentage])
			continue
		}
		entries = append(entries, models.KPIEntry{
			Technician: name,
			Date:       date,
			Percentage: pct,
		})
	}
	return entries
}

func looksLikeHeader(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "technician", "name", "employee":
		return true
	}
	return false
}
