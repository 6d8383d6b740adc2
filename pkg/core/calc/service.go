package calc

import (
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// ComputeService looks the technician up in the service-revenue table and
// copies the metrics. A missing row is not an error; Found=false tells the
// writer to leave the summary cells untouched.
func ComputeService(t *models.Technician, entries []models.ServiceEntry) ServiceResult {
	for _, e := range entries {
		if parse.SameName(e.Technician, t.Name) {
			return ServiceResult{
				TotalSales:       e.TotalSales,
				CompletedRevenue: e.CompletedRevenue,
				Found:            true,
			}
		}
	}
	return ServiceResult{}
}
