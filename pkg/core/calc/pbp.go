package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// The per-job PBP amount rides in the cross-sale group text, e.g. "PBP 400".
var pbpAmountRe = regexp.MustCompile(`(?i)pbp\s*(\d+(\.\d+)?)`)

// teamMember is one technician involved in a PBP job. Class is ClassUnknown
// when the name is not on the roster.
type teamMember struct {
	name  string
	class models.Class
	role  models.Role
}

// splitKey indexes the split table by paying team size and lead count; the
// assistant count is implied (total - leads).
type splitKey struct {
	total int
	leads int
}

// splitPair is {lead%, assistant%}.
type splitPair struct {
	lead float64
	asst float64
}

// The split table is authoritative: the constants are preserved verbatim
// even where a team's percentages do not sum to 100.
var splitTable = map[splitKey]splitPair{
	{1, 1}: {100, 0},
	{1, 0}: {0, 100},
	{2, 1}: {65, 35},
	{2, 2}: {50, 0},
	{2, 0}: {0, 50},
	{3, 1}: {46, 27},
	{3, 2}: {38, 24},
	{3, 3}: {33.33, 0},
	{3, 0}: {0, 33.33},
	{4, 2}: {30, 20},
	{4, 3}: {30, 10},
	{4, 4}: {25, 0},
	{4, 0}: {0, 25},
}

// SplitPercent returns the percentage awarded to a technician holding role
// on a job with the given team composition. Unmapped compositions (and any
// team larger than four) fall back to an even 100/total split.
func SplitPercent(role models.Role, leads, assistants int) float64 {
	total := leads + assistants
	if total == 0 || role == models.RoleNone {
		return 0
	}
	if pair, ok := splitTable[splitKey{total, leads}]; ok {
		if role == models.RoleLead {
			return pair.lead
		}
		return pair.asst
	}
	return 100 / float64(total)
}

// ComputePBP runs the PBP category for one technician over the decoded PBP
// entries. Roles are inferred per job from the full involved team, so the
// same entry yields consistent shares across technicians.
func ComputePBP(t *models.Technician, entries []models.PBPEntry, r *roster.Resolver, log *logrus.Entry) Result {
	if t.IsApprentice() && t.ZeroCommission() {
		return skipped(models.CategoryPBP, "apprentice with 0% commission")
	}
	eligible := roster.Eligible(t, models.CategoryPBP)

	var lines []models.ComputedLine
	seen := make(map[string]bool)
	for _, e := range entries {
		amount, ok := pbpAmount(e.CrossSaleGroup)
		if !ok {
			continue
		}

		involved := parse.SameName(e.PrimaryTech, t.Name) || parse.ContainsName(e.AssignedRaw, t.Name)
		if !involved {
			continue
		}

		key := dedupKey(e.Customer, e.CompletionDate, e.ItemName, amount)
		if seen[key] {
			log.WithField("customer", e.Customer).Debug("pbp: duplicate entry suppressed")
			continue
		}
		seen[key] = true

		team := buildTeam(e, r, log)
		leads, assistants := countRoles(team)

		role := models.RoleNone
		for _, m := range team {
			if parse.SameName(m.name, t.Name) {
				role = m.role
				break
			}
		}

		pct := SplitPercent(role, leads, assistants)
		share := parse.Round2(amount * pct / 100)
		if !eligible {
			// The seat still counts for the team split; the payout does not.
			share = 0
		}

		lines = append(lines, models.ComputedLine{
			Customer:     e.Customer,
			BusinessUnit: e.JobBusinessUnit,
			Date:         e.CompletionDate,
			Amount:       share,
			Notes: fmt.Sprintf("%s on %s (PBP $%s, %s%%)",
				role, teamShape(leads, assistants),
				strconv.FormatFloat(amount, 'f', -1, 64),
				strconv.FormatFloat(pct, 'f', -1, 64)),
			Category: models.CategoryPBP,
		})
	}
	return finalize(models.CategoryPBP, lines)
}

// pbpAmount extracts the job's PBP amount; amounts <= 0 disqualify the row.
func pbpAmount(crossSale string) (float64, bool) {
	m := pbpAmountRe.FindStringSubmatch(crossSale)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// buildTeam parses the assigned list, guarantees the primary a seat, assigns
// initial roles by class, then applies the team refinement rules in order.
func buildTeam(e models.PBPEntry, r *roster.Resolver, log *logrus.Entry) []teamMember {
	names, heuristic := parse.AssignedNames(e.AssignedRaw)
	if heuristic {
		log.WithFields(logrus.Fields{
			"customer": e.Customer,
			"assigned": e.AssignedRaw,
		}).Warn("pbp: odd token count in assigned technicians, treating each token as a name")
	}
	names = parse.EnsureName(names, e.PrimaryTech)

	team := make([]teamMember, 0, len(names))
	for _, name := range names {
		m := teamMember{name: name, class: models.ClassUnknown, role: models.RoleNone}
		var split float64
		if tech, ok := r.Resolve(name); ok {
			m.class = tech.Class
			split = tech.SplitDefault
		}
		switch m.class {
		case models.Class3, models.Class4:
			m.role = models.RoleLead
		case models.Class2, models.Class1:
			m.role = models.RoleAssistant
		default:
			// Keyword-only positions carry no class tier; the roster's
			// default split decides the role. Off-roster names keep no
			// role and occupy an unpaid seat.
			switch split {
			case 65:
				m.role = models.RoleLead
			case 35:
				m.role = models.RoleAssistant
			}
		}
		team = append(team, m)
	}

	refineTeam(team, e.PrimaryTech)
	return team
}

// refineTeam applies, in order: lead promotion when a team has assistants but
// no lead, the Class-2 promotion rule, and the solo-job rule.
func refineTeam(team []teamMember, primary string) {
	leads, assistants := countRoles(team)

	// 1. Assistants with no lead: promote the primary if seated, else a sole
	// assistant.
	if assistants > 0 && leads == 0 {
		promoted := false
		for i := range team {
			if parse.SameName(team[i].name, primary) && team[i].role == models.RoleAssistant {
				team[i].role = models.RoleLead
				promoted = true
				break
			}
		}
		if !promoted && assistants == 1 {
			for i := range team {
				if team[i].role == models.RoleAssistant {
					team[i].role = models.RoleLead
					break
				}
			}
		}
	}

	// 2. Class-2 promotion: when Class 2 is the highest class on the job,
	// every Class 2 leads.
	highest := models.ClassUnknown
	for _, m := range team {
		if m.class > highest {
			highest = m.class
		}
	}
	if highest == models.Class2 {
		for i := range team {
			if team[i].class == models.Class2 {
				team[i].role = models.RoleLead
			}
		}
	}

	// 3. Solo job: Lead for Class 2-4, Assistant otherwise.
	if len(team) == 1 {
		switch team[0].class {
		case models.Class2, models.Class3, models.Class4:
			team[0].role = models.RoleLead
		default:
			team[0].role = models.RoleAssistant
		}
	}
}

func countRoles(team []teamMember) (leads, assistants int) {
	for _, m := range team {
		switch m.role {
		case models.RoleLead:
			leads++
		case models.RoleAssistant:
			assistants++
		}
	}
	return leads, assistants
}

func dedupKey(customer, date, item string, amount float64) string {
	return strings.ToLower(strings.TrimSpace(customer)) + "|" +
		strings.TrimSpace(date) + "|" +
		strings.ToLower(strings.TrimSpace(item)) + "|" +
		strconv.FormatFloat(amount, 'f', 2, 64)
}

func teamShape(leads, assistants int) string {
	return fmt.Sprintf("%dL+%dA", leads, assistants)
}
