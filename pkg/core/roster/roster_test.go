package roster

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		position  string
		wantClass models.Class
		wantSplit float64
	}{
		{"Class 4 Technician", models.Class4, 65},
		{"class2", models.Class2, 35},
		{"Install - Class 1", models.Class1, 0},
		{"Lead Installer", models.ClassUnknown, 65},
		{"Senior Tech", models.ClassUnknown, 65},
		{"Apprentice", models.ClassUnknown, 35},
		{"Helper", models.ClassUnknown, 35},
		{"Dispatcher", models.ClassUnknown, 0},
	}
	for _, c := range cases {
		class, split := ClassOf(c.position)
		if class != c.wantClass || split != c.wantSplit {
			t.Errorf("ClassOf(%q) = (%d, %.0f), want (%d, %.0f)",
				c.position, class, split, c.wantClass, c.wantSplit)
		}
	}
}

func TestLoadAndResolve(t *testing.T) {
	rows := []models.RosterRow{
		{Name: "  John   Smith ", Department: "Install", Position: "Class 4", BaseRateRaw: "$32.50", ExemptRaw: "TRUE"},
		{Name: "Jane Doe", Position: "Class 2", BaseRateRaw: "28", CommissionRaw: "10%"},
		{Name: "Ann Lee", Position: "Apprentice", BaseRateRaw: "18", CommissionRaw: "0"},
		{Name: "", Position: "ghost row"},
	}
	r := Load(rows, testLog())

	if r.Len() != 3 {
		t.Fatalf("expected 3 technicians, got %d", r.Len())
	}

	john, ok := r.Resolve("john smith")
	if !ok {
		t.Fatal("case-insensitive resolve failed")
	}
	if john.Name != "John Smith" || john.BaseRate != 32.5 || !john.Exempt {
		t.Errorf("unexpected technician: %+v", john)
	}

	jane, _ := r.Resolve("Jane Doe")
	if jane.CommissionPct == nil || *jane.CommissionPct != 10 {
		t.Errorf("expected commission override 10, got %+v", jane.CommissionPct)
	}

	if _, ok := r.Resolve("Nobody"); ok {
		t.Error("expected NotFound for unknown name")
	}
}

func TestEligibility(t *testing.T) {
	zero := 0.0
	ten := 10.0
	class1 := &models.Technician{Name: "C1", Position: "Class 1", Class: models.Class1}
	apprenticeZero := &models.Technician{Name: "AZ", Position: "Apprentice", CommissionPct: &zero}
	apprenticePaid := &models.Technician{Name: "AP", Position: "Apprentice", CommissionPct: &ten}
	normal := &models.Technician{Name: "N", Position: "Class 3", Class: models.Class3}

	gated := []models.Category{
		models.CategorySpiff, models.CategoryPBP, models.CategoryYardSign, models.CategoryLeadSet,
	}
	always := []models.Category{
		models.CategoryTimesheet, models.CategoryKPI, models.CategoryService,
	}

	for _, cat := range gated {
		if Eligible(class1, cat) {
			t.Errorf("Class 1 must be ineligible for %s", cat)
		}
		if Eligible(apprenticeZero, cat) {
			t.Errorf("zero-commission apprentice must be ineligible for %s", cat)
		}
		if !Eligible(apprenticePaid, cat) {
			t.Errorf("paid apprentice should be eligible for %s", cat)
		}
		if !Eligible(normal, cat) {
			t.Errorf("Class 3 should be eligible for %s", cat)
		}
	}
	for _, cat := range always {
		if !Eligible(class1, cat) || !Eligible(apprenticeZero, cat) {
			t.Errorf("%s must always be eligible", cat)
		}
	}
}
