package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// ArchiveRepo persists completed payroll runs.
//
// Schema assumption (managed outside the engine):
//
//	CREATE TABLE IF NOT EXISTS payroll_runs (
//	  run_id UUID PRIMARY KEY,
//	  pay_period TEXT,
//	  run_json JSONB,
//	  archived_at TIMESTAMPTZ
//	);
type ArchiveRepo struct{}

// NewArchiveRepo creates a repository instance.
func NewArchiveRepo() *ArchiveRepo {
	return &ArchiveRepo{}
}

// archivedRun is the JSONB document shape.
type archivedRun struct {
	Report  *models.RunReport                   `json:"report"`
	Ledgers map[string]*models.TechnicianLedger `json:"ledgers"`
}

// Save upserts one run keyed by its run ID. Re-archiving an identical run
// is idempotent apart from the archived_at timestamp.
func (r *ArchiveRepo) Save(ctx context.Context, report *models.RunReport, ledgers map[string]*models.TechnicianLedger) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(archivedRun{Report: report, Ledgers: ledgers})
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", report.RunID, err)
	}

	query := `
		INSERT INTO payroll_runs (run_id, pay_period, run_json, archived_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET
			pay_period = EXCLUDED.pay_period,
			run_json = EXCLUDED.run_json,
			archived_at = EXCLUDED.archived_at;
	`
	if _, err := pool.Exec(ctx, query, report.RunID, report.PayPeriod.Label, jsonData, time.Now()); err != nil {
		return fmt.Errorf("archive run %s: %w", report.RunID, err)
	}
	return nil
}

// Load retrieves one archived run by ID.
func (r *ArchiveRepo) Load(ctx context.Context, runID string) (*models.RunReport, map[string]*models.TechnicianLedger, error) {
	pool := GetPool()
	if pool == nil {
		return nil, nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx,
		`SELECT run_json FROM payroll_runs WHERE run_id = $1`, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("no archived run %s", runID)
		}
		return nil, nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	var data archivedRun
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, nil, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	return data.Report, data.Ledgers, nil
}

// Latest retrieves the most recently archived run for a pay-period label.
func (r *ArchiveRepo) Latest(ctx context.Context, payPeriod string) (*models.RunReport, map[string]*models.TechnicianLedger, error) {
	pool := GetPool()
	if pool == nil {
		return nil, nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx,
		`SELECT run_json FROM payroll_runs WHERE pay_period = $1 ORDER BY archived_at DESC LIMIT 1`,
		payPeriod).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("no archived run for period %q", payPeriod)
		}
		return nil, nil, fmt.Errorf("load latest run for %q: %w", payPeriod, err)
	}

	var data archivedRun
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, nil, fmt.Errorf("unmarshal run for %q: %w", payPeriod, err)
	}
	return data.Report, data.Ledgers, nil
}
