// Package roster resolves technician identity and category eligibility from
// the Main roster table.
package roster

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

var classRe = regexp.MustCompile(`(?i)class\s*([1-4])`)

// ClassOf infers a technician's class and default split percentage from the
// position string. An explicit "Class N" token wins; otherwise role keywords
// decide the split (Lead 65, Assistant 35) with class unknown.
func ClassOf(position string) (models.Class, float64) {
	if m := classRe.FindStringSubmatch(position); m != nil {
		switch m[1] {
		case "1":
			return models.Class1, 0
		case "2":
			return models.Class2, 35
		case "3":
			return models.Class3, 65
		case "4":
			return models.Class4, 65
		}
	}
	p := strings.ToLower(position)
	if strings.Contains(p, "lead") || strings.Contains(p, "senior") {
		return models.ClassUnknown, 65
	}
	if strings.Contains(p, "assist") || strings.Contains(p, "apprentice") || strings.Contains(p, "helper") {
		return models.ClassUnknown, 35
	}
	return models.ClassUnknown, 0
}

// Eligible applies the category gates: Class 1 and zero-commission
// apprentices are excluded from every earned category. Timesheet, KPI and
// Service are always eligible. Ineligibility is not an error; the category
// result is simply empty.
func Eligible(t *models.Technician, cat models.Category) bool {
	switch cat {
	case models.CategoryTimesheet, models.CategoryKPI, models.CategoryService:
		return true
	}
	if t.Class == models.Class1 {
		return false
	}
	if t.IsApprentice() && t.ZeroCommission() {
		return false
	}
	return true
}

// Resolver indexes the roster by normalized name.
type Resolver struct {
	byName map[string]*models.Technician
	order  []string
}

// Load parses roster rows into technicians. Rows without a name are dropped;
// unparseable rate or commission cells are logged and zeroed rather than
// failing the roster.
func Load(rows []models.RosterRow, log *logrus.Entry) *Resolver {
	r := &Resolver{byName: make(map[string]*models.Technician)}
	for _, row := range rows {
		name := strings.Join(strings.Fields(row.Name), " ")
		if name == "" {
			continue
		}

		t := &models.Technician{
			Name:       name,
			Department: strings.TrimSpace(row.Department),
			Position:   strings.TrimSpace(row.Position),
			Exempt:     parse.Bool(row.ExemptRaw),
		}
		t.Class, t.SplitDefault = ClassOf(t.Position)

		if raw := strings.TrimSpace(row.BaseRateRaw); raw != "" {
			rate, err := parse.Money(raw)
			if err != nil {
				log.WithField("technician", name).Warnf("unreadable base rate %q, using 0", raw)
			} else {
				t.BaseRate = rate
			}
		}
		if raw := strings.TrimSpace(row.CommissionRaw); raw != "" {
			pct, err := parse.Money(strings.TrimSuffix(raw, "%"))
			if err != nil {
				log.WithField("technician", name).Warnf("unreadable commission %q, ignoring override", raw)
			} else {
				t.CommissionPct = &pct
			}
		}

		key := strings.ToLower(name)
		if _, dup := r.byName[key]; dup {
			log.WithField("technician", name).Warn("duplicate roster entry, keeping the first")
			continue
		}
		r.byName[key] = t
		r.order = append(r.order, key)
	}
	return r
}

// Resolve finds a technician by name. Matching is case-insensitive on
// whitespace-trimmed names.
func (r *Resolver) Resolve(name string) (*models.Technician, bool) {
	t, ok := r.byName[strings.ToLower(strings.Join(strings.Fields(name), " "))]
	return t, ok
}

// All returns technicians in roster order.
func (r *Resolver) All() []*models.Technician {
	out := make([]*models.Technician, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byName[key])
	}
	return out
}

// Len returns the roster size.
func (r *Resolver) Len() int { return len(r.order) }
