package pipeline

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/config"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/source"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Backend = "memory"
	cfg.Run.PayPeriod = "06/01/2024 - 06/07/2024"
	return cfg
}

// seedProvider builds a memory backend with two technicians and inputs
// spanning every category.
func seedProvider() *source.Memory {
	m := source.NewMemory()
	m.Roster = []models.RosterRow{
		{Name: "John Smith", Department: "Install", Position: "Class 4", BaseRateRaw: "$30.00"},
		{Name: "Jane Doe", Department: "Install", Position: "Class 2", BaseRateRaw: "$25.00"},
	}
	m.PayPeriod = "06/01/2024 - 06/07/2024"
	m.Seed("John Smith")
	m.Seed("Jane Doe")

	cfg := config.Default()
	m.Tables[cfg.Tables.Spiff] = [][]string{
		{"Customer", "Job Business Unit", "Completion Date", "Sold By", "Assigned Technicians", "Item Name", "Bonus"},
		{"Acme", "HVAC", "06/03/2024", "John Smith", "John Smith", "Thermostat", "$50"},
	}
	m.Tables[cfg.Tables.PBP] = [][]string{
		{"Customer", "Job Business Unit", "Completion Date", "Primary Technician", "Assigned Technicians", "Item Name", "Cross Sale Group"},
		{"Baker", "HVAC", "06/04/2024", "John Smith", "John Smith, Jane Doe", "Furnace install", "PBP 400"},
	}
	m.Tables[cfg.Tables.YardSign] = [][]string{
		{"Customer", "Job #", "Business Unit", "Completion Date", "Jobs Total", "Tags", "Assigned Technicians"},
		{"Carter", "J-1", "HVAC", "06/05/2024", "$5,000", "Yard Sign w/ Pic", "Jane Doe"},
	}
	m.Tables[cfg.Tables.Time] = [][]string{
		{"Employee Name", "Date", "Regular Hours", "Overtime Hours"},
		{"John Smith", "06/03/2024", "40", "2"},
		{"Jane Doe", "06/03/2024", "38", "0"},
	}
	m.Tables[cfg.Tables.LeadSet] = [][]string{
		{"Customer", "Business Unit", "Completion Date", "Revenue", "Notes", "Sold By"},
		{"Diaz", "HVAC", "06/05/2024", "$15,000", "", "Jane Doe"},
	}
	m.Tables[cfg.Tables.Service] = [][]string{
		{"Technician", "Total Sales", "Completed Revenue", "Completed Jobs"},
		{"John Smith", "$12,000", "$9,500", "6"},
	}
	kpiRow := func(name, date, pct string) []string {
		cells := make([]string, 16)
		cells[0], cells[13], cells[15] = name, date, pct
		return cells
	}
	m.Tables[cfg.Tables.KPI] = [][]string{
		kpiRow("Technician", "Date", "Score"),
		kpiRow("John Smith", "06/02/2024", "95%"),
		kpiRow("John Smith", "06/03/2024", "93%"),
	}
	return m
}

func TestRunAllEndToEnd(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	o := NewOrchestrator(m, testConfig(), testLog())

	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, report.Technicians, 2)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, models.StateComplete, report.Status())
	assert.Empty(t, report.SchemaErrors)

	john, err := m.ReadLedger(ctx, "John Smith")
	require.NoError(t, err)
	// spiff 50, pbp lead share 260, kpi avg 0.94 -> bonus 100
	assert.Equal(t, 50.00, john.Summary.Bonus)
	assert.Equal(t, 260.00, john.Summary.TotalInstallPay)
	assert.Equal(t, 100.00, john.Summary.KPIBonus)
	assert.InDelta(t, 0.94, john.Summary.CallByCallScore, 0.0001)
	assert.Equal(t, 12000.00, john.Summary.TotalSales)
	assert.Equal(t, 9500.00, john.Summary.CompletedRevenue)
	// 30*40 + 1.5*30*2 = 1290
	assert.Equal(t, 1290.00, john.Summary.TotalHourlyPay)
	assert.Equal(t, 1290.00+50+260+100, john.Summary.TotalPay)
	assert.Equal(t, john.Summary.TotalPay, m.RosterPay["John Smith"])

	jane, err := m.ReadLedger(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 140.00, jane.Summary.TotalInstallPay) // assistant share
	assert.Equal(t, 25.00, jane.Summary.YardSignSpiff)
	assert.Equal(t, 15000.00, jane.Summary.LeadSetSale)
	assert.Equal(t, 450.00, jane.Summary.LeadSetCommission)
	assert.Equal(t, 0.00, jane.Summary.KPIBonus)
	// 25*38 = 950
	assert.Equal(t, 950.00, jane.Summary.TotalHourlyPay)
	assert.Equal(t, 950.00+140+25+450, jane.Summary.TotalPay)
	assert.Equal(t, jane.Summary.TotalPay, m.RosterPay["Jane Doe"])
}

func TestRunAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	o := NewOrchestrator(m, testConfig(), testLog())

	_, err := o.RunAll(ctx)
	require.NoError(t, err)
	first, err := m.ReadLedger(ctx, "John Smith")
	require.NoError(t, err)

	_, err = o.RunAll(ctx)
	require.NoError(t, err)
	second, err := m.ReadLedger(ctx, "John Smith")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunAllSkipsTechnicianWithoutLedger(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	m.Roster = append(m.Roster, models.RosterRow{Name: "Ghost Tech", Position: "Class 3"})

	o := NewOrchestrator(m, testConfig(), testLog())
	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, report.Technicians, 3)

	ghost := report.Technicians[2]
	assert.Equal(t, "Ghost Tech", ghost.Technician)
	assert.True(t, ghost.Skipped)
	assert.Equal(t, models.StateSkipped, ghost.Status)
	assert.Equal(t, models.StateSkipped, report.Status())
}

func TestRunAllMissingTableYieldsEmptyCategory(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	delete(m.Tables, config.Default().Tables.LeadSet)

	o := NewOrchestrator(m, testConfig(), testLog())
	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateComplete, report.Status())

	jane, err := m.ReadLedger(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 0.00, jane.Summary.LeadSetCommission)
	assert.Empty(t, jane.LinesFor(models.CategoryLeadSet))
}

func TestRunAllSchemaErrorMarksCategory(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	m.Tables[config.Default().Tables.PBP] = [][]string{
		{"Customer", "Business Unit", "Completion Date"}, // no assigned/cross sale
	}

	o := NewOrchestrator(m, testConfig(), testLog())
	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, report.SchemaErrors)
	assert.Equal(t, models.StateError, report.Status())

	john := report.Technicians[0]
	var pbp *models.CategoryOutcome
	for i := range john.Categories {
		if john.Categories[i].Category == models.CategoryPBP {
			pbp = &john.Categories[i]
		}
	}
	require.NotNil(t, pbp)
	assert.Equal(t, models.StateError, pbp.State)

	// Other categories still ran.
	ledger, err := m.ReadLedger(ctx, "John Smith")
	require.NoError(t, err)
	assert.Equal(t, 50.00, ledger.Summary.Bonus)
}

func TestRunAllHonorsCancellation(t *testing.T) {
	m := seedProvider()
	o := NewOrchestrator(m, testConfig(), testLog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Technicians)
}

// A category blowing through the ceiling must not leave partial work on the
// shared ledger: the abandoned worker only ever holds the scratch copy.
func TestCategoryCeilingDiscardsAbandonedWork(t *testing.T) {
	cfg := testConfig()
	cfg.Run.CategoryTimeoutSeconds = 1
	o := NewOrchestrator(seedProvider(), cfg, testLog())

	led := &models.TechnicianLedger{Technician: "John Smith"}
	scratch := led.Clone()
	release := make(chan struct{})
	err := o.withTimeout(context.Background(), func() {
		<-release
		scratch.Lines = append(scratch.Lines, models.ComputedLine{Category: models.CategorySpiff, Amount: 50})
		scratch.Summary.Bonus = 50
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)

	assert.Empty(t, led.Lines)
	assert.Equal(t, 0.00, led.Summary.Bonus)
}

func TestRunForTechnician(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	o := NewOrchestrator(m, testConfig(), testLog())

	report, err := o.RunForTechnician(ctx, "jane doe")
	require.NoError(t, err)
	require.Len(t, report.Technicians, 1)
	assert.Equal(t, "Jane Doe", report.Technicians[0].Technician)
	assert.Equal(t, 0.00, m.RosterPay["John Smith"])

	_, err = o.RunForTechnician(ctx, "Nobody")
	assert.Error(t, err)
}

type captureArchive struct {
	report  *models.RunReport
	ledgers map[string]*models.TechnicianLedger
}

func (c *captureArchive) Save(ctx context.Context, report *models.RunReport, ledgers map[string]*models.TechnicianLedger) error {
	c.report = report
	c.ledgers = ledgers
	return nil
}

func TestRunAllArchivesCompletedRun(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	o := NewOrchestrator(m, testConfig(), testLog())
	arch := &captureArchive{}
	o.SetArchive(arch)

	report, err := o.RunAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, arch.report)
	assert.Equal(t, report.RunID, arch.report.RunID)
	assert.Len(t, arch.ledgers, 2)
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	m := seedProvider()
	m.Roster = append(m.Roster, models.RosterRow{Name: "Ghost Tech", Position: "Class 3"})
	o := NewOrchestrator(m, testConfig(), testLog())

	_, err := o.RunAll(ctx)
	require.NoError(t, err)

	ledgers, err := o.Summaries(ctx)
	require.NoError(t, err)
	assert.Len(t, ledgers, 2) // ghost has no ledger
}
