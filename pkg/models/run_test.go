package models

import "testing"

func TestCategoryStateWorse(t *testing.T) {
	cases := []struct {
		a, b, want CategoryState
	}{
		{StateComplete, StateComplete, StateComplete},
		{StateComplete, StateSkipped, StateSkipped},
		{StateSkipped, StateError, StateError},
		{StateError, StateComplete, StateError},
	}
	for _, c := range cases {
		if got := c.a.Worse(c.b); got != c.want {
			t.Errorf("%s.Worse(%s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestRunReportStatus(t *testing.T) {
	r := &RunReport{Technicians: []TechnicianReport{
		{Technician: "a", Status: StateComplete},
		{Technician: "b", Status: StateSkipped},
	}}
	if r.Status() != StateSkipped {
		t.Errorf("expected Skipped, got %s", r.Status())
	}
	if r.HasErrors() {
		t.Error("expected no errors")
	}

	r.Technicians = append(r.Technicians, TechnicianReport{Technician: "c", Status: StateError})
	if r.Status() != StateError || !r.HasErrors() {
		t.Errorf("expected Error status, got %s", r.Status())
	}
}
