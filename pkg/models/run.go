package models

import "time"

// CategoryState is the per-category, per-technician execution state.
type CategoryState string

const (
	StatePending    CategoryState = "Pending"
	StateProcessing CategoryState = "Processing"
	StateComplete   CategoryState = "Complete"
	StateSkipped    CategoryState = "Skipped"
	StateError      CategoryState = "Error"
)

// severity orders terminal states for worst-of aggregation:
// Complete < Skipped < Error.
func (s CategoryState) severity() int {
	switch s {
	case StateError:
		return 2
	case StateSkipped:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two terminal states.
func (s CategoryState) Worse(other CategoryState) CategoryState {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// CategoryOutcome records one category's terminal state for one technician.
type CategoryOutcome struct {
	Category Category      `json:"category"`
	State    CategoryState `json:"state"`
	Reason   string        `json:"reason,omitempty"`
	Count    int           `json:"count"`
	Amount   float64       `json:"amount"`
}

// TechnicianReport is the run outcome for one technician. Status is the
// worst outcome across the technician's categories.
type TechnicianReport struct {
	Technician string            `json:"technician"`
	Status     CategoryState     `json:"status"`
	Categories []CategoryOutcome `json:"categories"`
	TotalPay   float64           `json:"total_pay"`
	Skipped    bool              `json:"skipped,omitempty"` // no ledger present
}

// RunReport is the aggregate outcome of one engine run.
type RunReport struct {
	RunID       string             `json:"run_id"`
	PayPeriod   PayPeriod          `json:"pay_period"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Technicians []TechnicianReport `json:"technicians"`

	// SchemaErrors lists input tables whose required columns failed to map.
	// The affected categories ran empty; the CLI surfaces these distinctly.
	SchemaErrors []string `json:"schema_errors,omitempty"`
}

// Status is the worst technician outcome in the run.
func (r *RunReport) Status() CategoryState {
	status := StateComplete
	for _, t := range r.Technicians {
		status = status.Worse(t.Status)
	}
	return status
}

// HasErrors reports whether any technician ended in Error.
func (r *RunReport) HasErrors() bool {
	for _, t := range r.Technicians {
		if t.Status == StateError {
			return true
		}
	}
	return false
}
