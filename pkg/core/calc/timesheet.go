package calc

import (
	"strings"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// ComputeTimesheet sums regular and overtime hours for one technician.
// Name matching here is exact on the trimmed cell: the timesheet export
// carries canonical employee names, so fuzzy matching would only invite
// cross-crediting.
func ComputeTimesheet(t *models.Technician, entries []models.TimesheetEntry) TimesheetResult {
	var out TimesheetResult
	want := strings.TrimSpace(t.Name)
	for _, e := range entries {
		if strings.TrimSpace(e.EmployeeName) != want {
			continue
		}
		out.RegularHours += e.RegularHours
		out.OvertimeHours += e.OvertimeHours
	}
	return out
}
