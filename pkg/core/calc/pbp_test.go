package calc

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testRoster(t *testing.T, rows ...models.RosterRow) *roster.Resolver {
	t.Helper()
	return roster.Load(rows, testLog())
}

func TestComputePBPLeadAndAssistant(t *testing.T) {
	r := testRoster(t,
		models.RosterRow{Name: "John Smith", Position: "Class 4", BaseRateRaw: "30"},
		models.RosterRow{Name: "Jane Doe", Position: "Class 2", BaseRateRaw: "25"},
	)
	entries := []models.PBPEntry{{
		Customer:       "Acme HVAC",
		CompletionDate: "06/03/2024",
		PrimaryTech:    "John Smith",
		AssignedRaw:    "John Smith, Jane Doe",
		ItemName:       "Furnace install",
		CrossSaleGroup: "PBP 400",
	}}

	john, _ := r.Resolve("John Smith")
	res := ComputePBP(john, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 260.00, res.Lines[0].Amount)
	assert.Equal(t, 260.00, res.Total.Amount)
	assert.Contains(t, res.Lines[0].Notes, "Lead")

	jane, _ := r.Resolve("Jane Doe")
	res = ComputePBP(jane, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 140.00, res.Lines[0].Amount)
	assert.Contains(t, res.Lines[0].Notes, "Assistant")
}

func TestComputePBPSoloClassTwoLeads(t *testing.T) {
	r := testRoster(t, models.RosterRow{Name: "Jane Doe", Position: "Class 2"})
	entries := []models.PBPEntry{{
		Customer:       "Baker",
		PrimaryTech:    "Jane Doe",
		AssignedRaw:    "Jane Doe",
		CrossSaleGroup: "PBP 300",
	}}

	jane, _ := r.Resolve("Jane Doe")
	res := ComputePBP(jane, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 300.00, res.Lines[0].Amount)
	assert.Contains(t, res.Lines[0].Notes, "Lead")
}

func TestComputePBPThreePersonSplit(t *testing.T) {
	r := testRoster(t,
		models.RosterRow{Name: "John Smith", Position: "Class 4"},
		models.RosterRow{Name: "Jane Doe", Position: "Class 2"},
		models.RosterRow{Name: "Bob Ray", Position: "Class 2"},
	)
	entries := []models.PBPEntry{{
		Customer:       "Carter",
		PrimaryTech:    "John Smith",
		AssignedRaw:    "John Smith, Jane Doe, Bob Ray",
		CrossSaleGroup: "PBP 1000",
	}}

	want := map[string]float64{
		"John Smith": 460.00,
		"Jane Doe":   270.00,
		"Bob Ray":    270.00,
	}
	sum := 0.0
	for name, amount := range want {
		tech, ok := r.Resolve(name)
		require.True(t, ok)
		res := ComputePBP(tech, entries, r, testLog())
		require.Len(t, res.Lines, 1, name)
		assert.Equal(t, amount, res.Lines[0].Amount, name)
		sum += res.Lines[0].Amount
	}
	assert.Equal(t, 1000.00, sum)
}

func TestComputePBPIneligibleSeatStillCounts(t *testing.T) {
	r := testRoster(t,
		models.RosterRow{Name: "John Smith", Position: "Class 4"},
		models.RosterRow{Name: "Ann Lee", Position: "Class 1"},
	)
	entries := []models.PBPEntry{{
		Customer:       "Diaz",
		PrimaryTech:    "John Smith",
		AssignedRaw:    "John Smith, Ann Lee",
		CrossSaleGroup: "PBP 200",
	}}

	john, _ := r.Resolve("John Smith")
	res := ComputePBP(john, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 130.00, res.Lines[0].Amount)

	// Ann holds the assistant seat but is paid nothing.
	ann, _ := r.Resolve("Ann Lee")
	res = ComputePBP(ann, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 0.00, res.Lines[0].Amount)
	assert.False(t, res.Skipped)
}

func TestComputePBPKeywordPositionRoles(t *testing.T) {
	// Positions without a class tier fall back to the roster's default
	// split: 65 seats a lead, 35 an assistant.
	r := testRoster(t,
		models.RosterRow{Name: "Mia Wong", Position: "Lead Installer"},
		models.RosterRow{Name: "Ann Lee", Position: "Class 1"},
	)
	entries := []models.PBPEntry{{
		Customer:       "Frank",
		PrimaryTech:    "Mia Wong",
		AssignedRaw:    "Mia Wong, Ann Lee",
		CrossSaleGroup: "PBP 200",
	}}

	mia, _ := r.Resolve("Mia Wong")
	res := ComputePBP(mia, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 130.00, res.Lines[0].Amount)
	assert.Contains(t, res.Lines[0].Notes, "Lead")

	r = testRoster(t,
		models.RosterRow{Name: "John Smith", Position: "Class 4"},
		models.RosterRow{Name: "Bob Ray", Position: "Install Helper"},
	)
	entries = []models.PBPEntry{{
		Customer:       "Gray",
		PrimaryTech:    "John Smith",
		AssignedRaw:    "John Smith, Bob Ray",
		CrossSaleGroup: "PBP 200",
	}}

	bob, _ := r.Resolve("Bob Ray")
	res = ComputePBP(bob, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 70.00, res.Lines[0].Amount)
	assert.Contains(t, res.Lines[0].Notes, "Assistant")
}

func TestComputePBPApprenticeZeroCommissionSkipped(t *testing.T) {
	r := testRoster(t,
		models.RosterRow{Name: "Zed Ward", Position: "Apprentice", CommissionRaw: "0"},
	)
	entries := []models.PBPEntry{{
		PrimaryTech:    "Zed Ward",
		AssignedRaw:    "Zed Ward",
		CrossSaleGroup: "PBP 500",
	}}

	zed, _ := r.Resolve("Zed Ward")
	res := ComputePBP(zed, entries, r, testLog())
	assert.True(t, res.Skipped)
	assert.Empty(t, res.Lines)
	assert.Equal(t, 0.00, res.Total.Amount)
}

func TestComputePBPDeduplication(t *testing.T) {
	r := testRoster(t, models.RosterRow{Name: "Jane Doe", Position: "Class 2"})
	row := models.PBPEntry{
		Customer:       "Evans",
		CompletionDate: "06/05/2024",
		PrimaryTech:    "Jane Doe",
		AssignedRaw:    "Jane Doe",
		ItemName:       "AC install",
		CrossSaleGroup: "PBP 250",
	}
	entries := []models.PBPEntry{row, row, row}

	jane, _ := r.Resolve("Jane Doe")
	res := ComputePBP(jane, entries, r, testLog())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 250.00, res.Total.Amount)
}

func TestComputePBPSkipsRowsWithoutAmountOrInvolvement(t *testing.T) {
	r := testRoster(t, models.RosterRow{Name: "Jane Doe", Position: "Class 2"})
	entries := []models.PBPEntry{
		{Customer: "NoTag", PrimaryTech: "Jane Doe", AssignedRaw: "Jane Doe", CrossSaleGroup: "upsell"},
		{Customer: "ZeroAmt", PrimaryTech: "Jane Doe", AssignedRaw: "Jane Doe", CrossSaleGroup: "PBP 0"},
		{Customer: "OtherTech", PrimaryTech: "Mike Old", AssignedRaw: "Mike Old", CrossSaleGroup: "PBP 900"},
	}

	jane, _ := r.Resolve("Jane Doe")
	res := ComputePBP(jane, entries, r, testLog())
	assert.Empty(t, res.Lines)
	assert.Equal(t, 0.00, res.Total.Amount)
}

func TestSplitPercentFallback(t *testing.T) {
	// Five-person teams are off the table; everyone gets an even share.
	assert.Equal(t, 20.0, SplitPercent(models.RoleLead, 2, 3))
	assert.Equal(t, 20.0, SplitPercent(models.RoleAssistant, 2, 3))
	assert.Equal(t, 0.0, SplitPercent(models.RoleNone, 2, 1))
}
