// Package pipeline drives the compensation run: categories in fixed order
// per technician, technicians in roster order, with per-category isolation
// so one failure never aborts the rest of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/calc"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/config"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/ledger"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/parse"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/roster"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/schema"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/source"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/validate"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// CategoryOrder is fixed: later categories read summary values earlier ones
// wrote, and Total Pay is derived only after all seven complete.
var CategoryOrder = []models.Category{
	models.CategorySpiff,
	models.CategoryPBP,
	models.CategoryKPI,
	models.CategoryYardSign,
	models.CategoryTimesheet,
	models.CategoryService,
	models.CategoryLeadSet,
}

// Archiver persists a completed run. Satisfied by store.ArchiveRepo.
type Archiver interface {
	Save(ctx context.Context, report *models.RunReport, ledgers map[string]*models.TechnicianLedger) error
}

// Orchestrator owns one engine instance: a provider, the configuration and
// an optional run archive.
type Orchestrator struct {
	provider source.Provider
	cfg      config.Config
	archive  Archiver
	log      *logrus.Entry

	// payMu serializes roster Pay writes, the only cross-technician
	// write site.
	payMu sync.Mutex
}

// NewOrchestrator builds an orchestrator over a provider.
func NewOrchestrator(provider source.Provider, cfg config.Config, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		cfg:      cfg,
		log:      log.WithField("component", "pipeline"),
	}
}

// SetArchive injects the run archive; nil disables archiving.
func (o *Orchestrator) SetArchive(a Archiver) {
	o.archive = a
}

// runInputs holds everything read from the backend for one run: the roster,
// the pay period and the decoded input tables. Input data is read-only for
// the rest of the run; one bulk read per table.
type runInputs struct {
	roster *roster.Resolver
	period models.PayPeriod

	spiff    []models.SpiffBonusEntry
	pbp      []models.PBPEntry
	yardSign []models.YardSignEntry
	time     []models.TimesheetEntry
	leadSet  []models.LeadEntry
	service  []models.ServiceEntry
	kpiRows  [][]string

	// catErr records a category whose table failed to decode; the category
	// is marked Error for every technician but the run continues.
	catErr map[models.Category]error

	kpiOnce sync.Once
	kpiIdx  *calc.KPIIndex
}

// kpiIndex builds the Call-By-Call index on first use and caches it for the
// rest of the run.
func (in *runInputs) kpiIndex(ref time.Time, log *logrus.Entry) *calc.KPIIndex {
	in.kpiOnce.Do(func() {
		in.kpiIdx = calc.NewKPIIndex(calc.DecodeKPITable(in.kpiRows, ref, log))
	})
	return in.kpiIdx
}

// RunAll executes the pipeline for every roster technician with a present
// ledger. The run never aborts on a single technician; the report carries
// each outcome. The returned error covers only run-level failures (roster
// unreadable, context cancelled before any work).
func (o *Orchestrator) RunAll(ctx context.Context) (*models.RunReport, error) {
	inputs, report, err := o.prepare(ctx)
	if err != nil {
		return report, err
	}

	for _, t := range inputs.roster.All() {
		// Cancellation is honored between technicians so every written
		// ledger stays whole.
		if err := ctx.Err(); err != nil {
			o.log.Warn("run cancelled; already-written ledgers are consistent")
			break
		}
		report.Technicians = append(report.Technicians, o.runTechnician(ctx, inputs, t))
	}

	o.finish(ctx, inputs, report)
	return report, nil
}

// RunForTechnician executes the pipeline for one named technician.
func (o *Orchestrator) RunForTechnician(ctx context.Context, name string) (*models.RunReport, error) {
	inputs, report, err := o.prepare(ctx)
	if err != nil {
		return report, err
	}

	t, ok := inputs.roster.Resolve(name)
	if !ok {
		return report, fmt.Errorf("technician %q not on roster", name)
	}
	report.Technicians = append(report.Technicians, o.runTechnician(ctx, inputs, t))

	o.finish(ctx, inputs, report)
	return report, nil
}

// prepare loads the roster, resolves the pay period and bulk-reads every
// input table.
func (o *Orchestrator) prepare(ctx context.Context) (*runInputs, *models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := o.log.WithField("run", report.RunID)

	rows, err := o.provider.ListRoster(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("read roster: %w", err)
	}
	inputs := &runInputs{
		roster: roster.Load(rows, log),
		catErr: make(map[models.Category]error),
	}
	log.WithField("technicians", inputs.roster.Len()).Info("roster loaded")

	label := o.cfg.Run.PayPeriod
	if label == "" {
		if label, err = o.provider.PayPeriodText(ctx); err != nil {
			log.WithError(err).Warn("pay-period cell unreadable, using trailing week")
		}
	}
	inputs.period = parse.PayPeriod(label, time.Now())
	report.PayPeriod = inputs.period
	log.WithFields(logrus.Fields{
		"label": inputs.period.Label,
		"start": inputs.period.Start.Format("01/02/2006"),
		"end":   inputs.period.End.Format("01/02/2006"),
	}).Info("pay period resolved")

	o.loadTables(ctx, inputs, report, log)
	return inputs, report, nil
}

// loadTables reads and decodes each input table once. A missing table
// leaves its category empty with a warning; a schema failure marks the
// category Error and is surfaced on the report.
func (o *Orchestrator) loadTables(ctx context.Context, inputs *runInputs, report *models.RunReport, log *logrus.Entry) {
	read := func(name string, cat models.Category) [][]string {
		rows, err := o.provider.ReadTable(ctx, name)
		if err != nil {
			if source.IsNotFound(err) {
				log.WithField("table", name).Warn("input table missing, category will be empty")
				return nil
			}
			inputs.catErr[cat] = err
			log.WithError(err).WithField("table", name).Error("input table unreadable")
			return nil
		}
		return rows
	}
	decode := func(cat models.Category, err error) {
		if err == nil {
			return
		}
		inputs.catErr[cat] = err
		var se *schema.SchemaError
		if errors.As(err, &se) {
			report.SchemaErrors = append(report.SchemaErrors, se.Error())
		}
		log.WithError(err).WithField("category", cat).Error("input table failed to decode")
	}

	tables := o.cfg.Tables
	var err error

	inputs.spiff, err = calc.DecodeSpiffTable(read(tables.Spiff, models.CategorySpiff))
	decode(models.CategorySpiff, err)

	inputs.pbp, err = calc.DecodePBPTable(read(tables.PBP, models.CategoryPBP))
	decode(models.CategoryPBP, err)

	inputs.yardSign, err = calc.DecodeYardSignTable(read(tables.YardSign, models.CategoryYardSign))
	decode(models.CategoryYardSign, err)

	inputs.time, err = calc.DecodeTimesheetTable(read(tables.Time, models.CategoryTimesheet), log)
	decode(models.CategoryTimesheet, err)

	inputs.leadSet, err = calc.DecodeLeadSetTable(read(tables.LeadSet, models.CategoryLeadSet), log)
	decode(models.CategoryLeadSet, err)

	inputs.service, err = calc.DecodeServiceTable(read(tables.Service, models.CategoryService), log)
	decode(models.CategoryService, err)

	inputs.kpiRows = read(tables.KPI, models.CategoryKPI)
}

// runTechnician executes the fixed category pipeline for one technician and
// writes the resulting ledger. One ledger write per technician keeps the
// ledger the unit of atomicity.
func (o *Orchestrator) runTechnician(ctx context.Context, inputs *runInputs, t *models.Technician) models.TechnicianReport {
	log := o.log.WithField("technician", t.Name)
	rep := models.TechnicianReport{Technician: t.Name, Status: models.StateComplete}

	led, err := o.provider.ReadLedger(ctx, t.Name)
	if err != nil {
		if source.IsNotFound(err) {
			log.Warn("no ledger sheet, skipping technician")
			rep.Status = models.StateSkipped
			rep.Skipped = true
			return rep
		}
		log.WithError(err).Error("ledger unreadable")
		rep.Status = models.StateError
		return rep
	}

	for _, cat := range CategoryOrder {
		outcome := o.runCategory(ctx, inputs, t, led, cat)
		rep.Categories = append(rep.Categories, outcome)
		rep.Status = rep.Status.Worse(outcome.State)
		log.WithFields(logrus.Fields{
			"category": cat,
			"state":    outcome.State,
			"amount":   outcome.Amount,
		}).Debug("category finished")
	}

	ledger.FinalizeTotals(led, t)
	rep.TotalPay = led.Summary.TotalPay

	if r := validate.Ledger(led); !r.AllPassed {
		log.WithField("failed", r.FailedChecks).Warn("ledger consistency check failed")
	}

	if err := o.provider.WriteLedger(ctx, t.Name, led); err != nil {
		log.WithError(err).Error("ledger write failed")
		rep.Status = models.StateError
		return rep
	}

	o.payMu.Lock()
	err = o.provider.UpdateRosterPay(ctx, t.Name, led.Summary.TotalPay)
	o.payMu.Unlock()
	if err != nil {
		log.WithError(err).Error("roster pay update failed")
		rep.Status = models.StateError
		return rep
	}

	log.WithField("total_pay", ledger.FormatMoney(led.Summary.TotalPay)).Info("technician complete")
	return rep
}

// runCategory moves one category through Pending -> Processing -> terminal
// under the soft per-category ceiling.
func (o *Orchestrator) runCategory(ctx context.Context, inputs *runInputs, t *models.Technician, led *models.TechnicianLedger, cat models.Category) models.CategoryOutcome {
	outcome := models.CategoryOutcome{Category: cat, State: models.StatePending}

	if err := inputs.catErr[cat]; err != nil {
		outcome.State = models.StateError
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.State = models.StateProcessing

	// The worker gets a private ledger copy and outcome. On expiry the
	// abandoned goroutine keeps mutating only its scratch state; the shared
	// ledger is adopted from the scratch copy solely on completion.
	scratch := led.Clone()
	worked := models.CategoryOutcome{Category: cat, State: models.StateProcessing}
	err := o.withTimeout(ctx, func() {
		o.compute(inputs, t, scratch, cat, &worked)
	})
	if err != nil {
		outcome.State = models.StateError
		outcome.Reason = err.Error()
		return outcome
	}
	*led = *scratch
	return worked
}

// compute runs the calculator for one category and applies its result to
// the in-memory ledger, filling the outcome's terminal state.
func (o *Orchestrator) compute(inputs *runInputs, t *models.Technician, led *models.TechnicianLedger, cat models.Category, outcome *models.CategoryOutcome) {
	log := o.log.WithField("technician", t.Name)

	settle := func(res calc.Result) {
		outcome.Count = res.Total.Count
		outcome.Amount = res.Total.Amount
		if res.Skipped {
			outcome.State = models.StateSkipped
			outcome.Reason = res.Reason
		} else {
			outcome.State = models.StateComplete
		}
	}

	ref := inputs.period.End

	switch cat {
	case models.CategorySpiff:
		res := calc.ComputeSpiff(t, inputs.spiff, log)
		ledger.ApplySpiff(led, res, ref)
		settle(res)
	case models.CategoryPBP:
		res := calc.ComputePBP(t, inputs.pbp, inputs.roster, log)
		ledger.ApplyPBP(led, res, ref)
		settle(res)
	case models.CategoryKPI:
		res := inputs.kpiIndex(ref, log).ComputeKPI(t, inputs.period)
		ledger.ApplyKPI(led, res, ref)
		settle(res.Result)
	case models.CategoryYardSign:
		res := calc.ComputeYardSign(t, inputs.yardSign)
		ledger.ApplyYardSign(led, res, ref)
		settle(res)
	case models.CategoryTimesheet:
		res := calc.ComputeTimesheet(t, inputs.time)
		ledger.ApplyTimesheet(led, res)
		outcome.State = models.StateComplete
	case models.CategoryService:
		res := calc.ComputeService(t, inputs.service)
		ledger.ApplyService(led, res)
		outcome.State = models.StateComplete
		if !res.Found {
			outcome.Reason = "no service row"
		}
	case models.CategoryLeadSet:
		res := calc.ComputeLeadSet(t, inputs.leadSet)
		ledger.ApplyLeadSet(led, res, ref)
		settle(res.Result)
	}
}

// withTimeout runs fn under the configured per-category ceiling. On expiry
// the worker goroutine is abandoned; fn must therefore touch only state
// private to the call (runCategory hands it a scratch ledger).
func (o *Orchestrator) withTimeout(ctx context.Context, fn func()) error {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.CategoryTimeout())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
		return nil
	case <-cctx.Done():
		return cctx.Err()
	}
}

// finish stamps the report and archives the run when an archive is wired.
func (o *Orchestrator) finish(ctx context.Context, inputs *runInputs, report *models.RunReport) {
	report.FinishedAt = time.Now()

	log := o.log.WithField("run", report.RunID)
	log.WithFields(logrus.Fields{
		"technicians": len(report.Technicians),
		"status":      report.Status(),
		"elapsed":     report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	}).Info("run finished")

	if o.archive == nil {
		return
	}
	ledgers := make(map[string]*models.TechnicianLedger)
	for _, tr := range report.Technicians {
		if tr.Skipped || tr.Status == models.StateError {
			continue
		}
		if led, err := o.provider.ReadLedger(ctx, tr.Technician); err == nil {
			ledgers[tr.Technician] = led
		}
	}
	if err := o.archive.Save(ctx, report, ledgers); err != nil {
		log.WithError(err).Warn("run archive failed")
	}
}

// Summaries reads back the current ledger of every roster technician, for
// the print-summary surface. Technicians without a ledger are omitted.
func (o *Orchestrator) Summaries(ctx context.Context) ([]*models.TechnicianLedger, error) {
	rows, err := o.provider.ListRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	r := roster.Load(rows, o.log)

	var out []*models.TechnicianLedger
	for _, t := range r.All() {
		led, err := o.provider.ReadLedger(ctx, t.Name)
		if err != nil {
			if source.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, led)
	}
	return out, nil
}
