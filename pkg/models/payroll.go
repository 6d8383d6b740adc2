// Package models defines the shared data types of the payroll compensation
// engine: technicians, pay periods, input rows from the tabular sources, and
// the per-technician ledger that calculators write into.
package models

import (
	"strings"
	"time"
)

// Category identifies a compensation category. The tag is also the literal
// marker written into column 10 of a ledger line block.
type Category string

const (
	CategorySpiff     Category = "Spiff"
	CategoryPBP       Category = "PBP"
	CategoryKPI       Category = "KPI"
	CategoryYardSign  Category = "Yard Sign"
	CategoryTimesheet Category = "Time Sheet"
	CategoryService   Category = "Service"
	CategoryLeadSet   Category = "Lead Set"
)

// Class is a technician's skill tier (1-4). ClassUnknown means the roster
// position string carried no recognizable tier.
type Class int

const (
	ClassUnknown Class = 0
	Class1       Class = 1
	Class2       Class = 2
	Class3       Class = 3
	Class4       Class = 4
)

// Role is a paying role on a PBP job.
type Role int

const (
	RoleNone Role = iota
	RoleAssistant
	RoleLead
)

func (r Role) String() string {
	switch r {
	case RoleLead:
		return "Lead"
	case RoleAssistant:
		return "Assistant"
	default:
		return "None"
	}
}

// Technician is a resolved roster entry. Read-only during a run.
type Technician struct {
	Name          string   `json:"name"`
	Department    string   `json:"department"`
	Position      string   `json:"position"`
	BaseRate      float64  `json:"base_rate"`
	Exempt        bool     `json:"exempt"`
	CommissionPct *float64 `json:"commission_pct,omitempty"` // 0-100; nil = no override
	Class         Class    `json:"class"`
	SplitDefault  float64  `json:"split_default"` // 0, 35 or 65 from role keywords
}

// IsApprentice reports whether the position string marks an apprentice.
func (t *Technician) IsApprentice() bool {
	return strings.Contains(strings.ToLower(t.Position), "apprentice")
}

// ZeroCommission reports whether the commission override is present and zero.
func (t *Technician) ZeroCommission() bool {
	return t.CommissionPct != nil && *t.CommissionPct == 0
}

// RosterRow is a raw roster record as read from the Main sheet. Numeric and
// boolean cells stay unparsed so the resolver owns all normalization and can
// surface per-row parse problems in one place.
type RosterRow struct {
	Name          string `json:"name"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	BaseRateRaw   string `json:"base_rate_raw"`
	ExemptRaw     string `json:"exempt_raw"`
	CommissionRaw string `json:"commission_raw"`
	PayRaw        string `json:"pay_raw"`
}

// PayPeriod is the dated window that drives all time-filtered categories.
// End is inclusive.
type PayPeriod struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the period (inclusive bounds,
// calendar-day resolution).
func (p PayPeriod) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// ---------------------------------------------------------------------------
// Input rows (one struct per source table)
// ---------------------------------------------------------------------------

// PBPEntry is one pay-by-performance job row. The job's PBP amount is
// embedded in CrossSaleGroup as "PBP <amount>".
type PBPEntry struct {
	Customer        string `json:"customer"`
	JobBusinessUnit string `json:"job_business_unit"`
	CompletionDate  string `json:"completion_date"`
	PrimaryTech     string `json:"primary_tech"`
	AssignedRaw     string `json:"assigned_raw"`
	ItemName        string `json:"item_name"`
	CrossSaleGroup  string `json:"cross_sale_group"`
}

// SpiffBonusEntry is one spiff/bonus row.
type SpiffBonusEntry struct {
	Customer        string `json:"customer"`
	JobBusinessUnit string `json:"job_business_unit"`
	CompletionDate  string `json:"completion_date"`
	SoldBy          string `json:"sold_by"`
	AssignedRaw     string `json:"assigned_raw"`
	ItemName        string `json:"item_name"`
	BonusRaw        string `json:"bonus_raw"`
}

// YardSignEntry is one yard-sign install row.
type YardSignEntry struct {
	Customer       string `json:"customer"`
	JobNumber      string `json:"job_number"`
	BusinessUnit   string `json:"business_unit"`
	CompletionDate string `json:"completion_date"`
	JobsTotalRaw   string `json:"jobs_total_raw"`
	Tags           string `json:"tags"`
	AssignedRaw    string `json:"assigned_raw"`
}

// LeadEntry is one lead-set sale row.
type LeadEntry struct {
	Customer       string  `json:"customer"`
	BusinessUnit   string  `json:"business_unit"`
	CompletionDate string  `json:"completion_date"`
	Revenue        float64 `json:"revenue"`
	Notes          string  `json:"notes"`
	SoldBy         string  `json:"sold_by"`
}

// TimesheetEntry is one timesheet row.
type TimesheetEntry struct {
	EmployeeName  string  `json:"employee_name"`
	Date          string  `json:"date"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
}

// KPIEntry is one Call-By-Call score row. Percentage is normalized to [0,1].
type KPIEntry struct {
	Technician string    `json:"technician"`
	Date       time.Time `json:"date"`
	Percentage float64   `json:"percentage"`
}

// ServiceEntry is one service-revenue row.
type ServiceEntry struct {
	Technician       string  `json:"technician"`
	TotalSales       float64 `json:"total_sales"`
	CompletedRevenue float64 `json:"completed_revenue"`
	CompletedJobs    float64 `json:"completed_jobs"`
}

// ---------------------------------------------------------------------------
// Outputs
// ---------------------------------------------------------------------------

// ComputedLine is one category line in a technician ledger. Date carries the
// MM/DD/YYYY display form.
type ComputedLine struct {
	Customer     string   `json:"customer"`
	BusinessUnit string   `json:"business_unit"`
	Date         string   `json:"date"`
	Amount       float64  `json:"amount"`
	Notes        string   `json:"notes"`
	Category     Category `json:"category"`
}

// CategoryTotal summarizes the lines of one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Amount   float64  `json:"amount"`
}

// LedgerSummary mirrors the fixed summary rows of a technician ledger sheet.
type LedgerSummary struct {
	BaseRate          float64 `json:"base_rate"`           // row 4
	RegularHours      float64 `json:"regular_hours"`       // row 6
	OvertimeHours     float64 `json:"overtime_hours"`      // row 7
	PTOHours          float64 `json:"pto_hours"`           // row 8
	TotalHourlyPay    float64 `json:"total_hourly_pay"`    // row 9
	Bonus             float64 `json:"bonus"`               // row 11 (Spiff/Bonus)
	YardSignSpiff     float64 `json:"yard_sign_spiff"`     // row 12
	TotalInstallPay   float64 `json:"total_install_pay"`   // row 13 (PBP)
	LeadSetSale       float64 `json:"lead_set_sale"`       // row 14
	LeadSetCommission float64 `json:"lead_set_commission"` // row 14
	CallByCallScore   float64 `json:"call_by_call_score"`  // row 15, [0,1]
	KPIBonus          float64 `json:"kpi_bonus"`           // row 15
	CompletedRevenue  float64 `json:"completed_revenue"`   // row 16
	TotalSales        float64 `json:"total_sales"`         // row 17
	TotalPay          float64 `json:"total_pay"`           // row 18
}

// TechnicianLedger is the output unit of a run: ordered category lines plus
// the summary block. Each ledger is also the unit of atomicity for writes.
type TechnicianLedger struct {
	Technician string         `json:"technician"`
	Lines      []ComputedLine `json:"lines"`
	Summary    LedgerSummary  `json:"summary"`
}

// Clone returns a deep copy safe to mutate independently of l.
func (l *TechnicianLedger) Clone() *TechnicianLedger {
	c := *l
	c.Lines = append([]ComputedLine(nil), l.Lines...)
	return &c
}

// LinesFor returns the lines tagged with cat, in ledger order.
func (l *TechnicianLedger) LinesFor(cat Category) []ComputedLine {
	var out []ComputedLine
	for _, line := range l.Lines {
		if line.Category == cat {
			out = append(out, line)
		}
	}
	return out
}
