package source

import (
	"context"
	"sync"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Memory is an in-memory Provider used by the test suite and dry runs.
// Ledgers are deep-copied on read and write so callers never share state
// with the store.
type Memory struct {
	mu sync.RWMutex

	Roster    []models.RosterRow
	PayPeriod string
	Tables    map[string][][]string
	Ledgers   map[string]*models.TechnicianLedger
	RosterPay map[string]float64
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		Tables:    make(map[string][][]string),
		Ledgers:   make(map[string]*models.TechnicianLedger),
		RosterPay: make(map[string]float64),
	}
}

func (m *Memory) ListRoster(ctx context.Context) ([]models.RosterRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RosterRow, len(m.Roster))
	copy(out, m.Roster)
	return out, nil
}

func (m *Memory) PayPeriodText(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PayPeriod, nil
}

func (m *Memory) ReadTable(ctx context.Context, name string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.Tables[name]
	if !ok {
		return nil, NotFound(name)
	}
	return rows, nil
}

func (m *Memory) ReadLedger(ctx context.Context, tech string) (*models.TechnicianLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.Ledgers[tech]
	if !ok {
		return nil, NotFound(tech)
	}
	return copyLedger(l), nil
}

func (m *Memory) WriteLedger(ctx context.Context, tech string, ledger *models.TechnicianLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ledgers[tech] = copyLedger(ledger)
	return nil
}

func (m *Memory) UpdateRosterPay(ctx context.Context, tech string, totalPay float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RosterPay[tech] = totalPay
	return nil
}

// Seed registers an empty ledger for a technician, mirroring a provisioned
// but unwritten sheet.
func (m *Memory) Seed(tech string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Ledgers[tech]; !ok {
		m.Ledgers[tech] = &models.TechnicianLedger{Technician: tech}
	}
}

func copyLedger(l *models.TechnicianLedger) *models.TechnicianLedger {
	out := &models.TechnicianLedger{
		Technician: l.Technician,
		Summary:    l.Summary,
		Lines:      make([]models.ComputedLine, len(l.Lines)),
	}
	copy(out.Lines, l.Lines)
	return out
}
