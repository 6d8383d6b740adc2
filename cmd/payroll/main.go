package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/config"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/ledger"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/pipeline"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/source"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/core/store"
	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

const (
	exitOK             = 0
	exitSchemaError    = 2
	exitPartialFailure = 3
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: payroll [-config payroll.yaml] <command>

Commands:
  run-all            compute compensation for every roster technician
  run-tech <name>    compute compensation for one technician
  print-summary      print the current ledger summaries
      -run <id>          print an archived run instead
      -period <label>    print the latest archived run for a pay period

Exit codes: 0 success, 2 roster/schema error, 3 partial failure.
`)
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "payroll.yaml", "engine configuration file")
	verbose := flag.Bool("v", false, "debug logging")
	archivedRun := flag.String("run", "", "archived run ID for print-summary")
	archivedPeriod := flag.String("period", "", "pay-period label for print-summary, latest archived run")
	flag.Usage = usage
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, assuming environment variables are set")
	}

	if flag.NArg() < 1 {
		usage()
		return exitSchemaError
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("configuration invalid")
		return exitSchemaError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, cleanup, err := buildProvider(ctx, cfg, entry)
	if err != nil {
		log.WithError(err).Error("backend unavailable")
		return exitSchemaError
	}
	defer cleanup()

	orch := pipeline.NewOrchestrator(provider, cfg, entry)
	if cfg.Run.Archive {
		if err := store.InitDB(ctx); err != nil {
			log.WithError(err).Warn("run archive unavailable, continuing without it")
		}
		if store.Enabled() {
			defer store.Close()
			orch.SetArchive(store.NewArchiveRepo())
		}
	}

	switch command {
	case "run-all":
		report, err := orch.RunAll(ctx)
		if err != nil {
			log.WithError(err).Error("run failed")
			return exitSchemaError
		}
		printReport(report)
		return reportExitCode(report)

	case "run-tech":
		if flag.NArg() < 2 {
			usage()
			return exitSchemaError
		}
		report, err := orch.RunForTechnician(ctx, flag.Arg(1))
		if err != nil {
			log.WithError(err).Error("run failed")
			return exitSchemaError
		}
		printReport(report)
		return reportExitCode(report)

	case "print-summary":
		if *archivedRun != "" || *archivedPeriod != "" {
			return printArchived(ctx, log, *archivedRun, *archivedPeriod)
		}
		ledgers, err := orch.Summaries(ctx)
		if err != nil {
			log.WithError(err).Error("summary read failed")
			return exitSchemaError
		}
		printSummaries(ledgers)
		return exitOK

	default:
		usage()
		return exitSchemaError
	}
}

func buildProvider(ctx context.Context, cfg config.Config, log *logrus.Entry) (source.Provider, func(), error) {
	switch cfg.Backend {
	case "sheets":
		p, err := source.NewSheets(ctx,
			cfg.Sheets.SpreadsheetID, cfg.Sheets.KPISpreadsheetID,
			cfg.Tables.KPI, cfg.Sheets.CredentialsFile, log)
		return p, func() {}, err
	case "excel":
		p, err := source.OpenExcel(cfg.Excel.Path)
		if err != nil {
			return nil, func() {}, err
		}
		return p, func() { _ = p.Close() }, nil
	case "memory":
		return source.NewMemory(), func() {}, nil
	}
	return nil, func() {}, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// printArchived replays an archived run from the Postgres store, by run ID
// or as the latest run for a pay-period label.
func printArchived(ctx context.Context, log *logrus.Logger, runID, period string) int {
	if err := store.InitDB(ctx); err != nil {
		log.WithError(err).Error("run archive unavailable")
		return exitSchemaError
	}
	defer store.Close()

	repo := store.NewArchiveRepo()
	var (
		report  *models.RunReport
		ledgers map[string]*models.TechnicianLedger
		err     error
	)
	if runID != "" {
		report, ledgers, err = repo.Load(ctx, runID)
	} else {
		report, ledgers, err = repo.Latest(ctx, period)
	}
	if err != nil {
		log.WithError(err).Error("archived run not found")
		return exitSchemaError
	}

	printReport(report)
	names := make([]string, 0, len(ledgers))
	for name := range ledgers {
		names = append(names, name)
	}
	sort.Strings(names)
	ordered := make([]*models.TechnicianLedger, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, ledgers[name])
	}
	printSummaries(ordered)
	return exitOK
}

func reportExitCode(report *models.RunReport) int {
	if len(report.SchemaErrors) > 0 {
		return exitSchemaError
	}
	if report.HasErrors() {
		return exitPartialFailure
	}
	return exitOK
}

func printReport(report *models.RunReport) {
	fmt.Printf("Run %s  period %s (%s - %s)\n",
		report.RunID, report.PayPeriod.Label,
		report.PayPeriod.Start.Format("01/02/2006"),
		report.PayPeriod.End.Format("01/02/2006"))
	for _, t := range report.Technicians {
		if t.Skipped {
			fmt.Printf("  %-24s skipped (no ledger)\n", t.Technician)
			continue
		}
		fmt.Printf("  %-24s %-9s total pay %s\n",
			t.Technician, t.Status, ledger.FormatMoney(t.TotalPay))
		for _, c := range t.Categories {
			if c.State == models.StateComplete && c.Reason == "" {
				continue
			}
			fmt.Printf("      %-12s %-9s %s\n", c.Category, c.State, c.Reason)
		}
	}
	for _, e := range report.SchemaErrors {
		fmt.Printf("  schema error: %s\n", e)
	}
}

func printSummaries(ledgers []*models.TechnicianLedger) {
	for _, l := range ledgers {
		s := l.Summary
		fmt.Printf("%s\n", l.Technician)
		fmt.Printf("  hours        %.2f reg / %.2f OT @ %s\n",
			s.RegularHours, s.OvertimeHours, ledger.FormatMoney(s.BaseRate))
		fmt.Printf("  hourly pay   %s\n", ledger.FormatMoney(s.TotalHourlyPay))
		fmt.Printf("  spiff/bonus  %s\n", ledger.FormatMoney(s.Bonus))
		fmt.Printf("  install pay  %s\n", ledger.FormatMoney(s.TotalInstallPay))
		fmt.Printf("  yard signs   %s\n", ledger.FormatMoney(s.YardSignSpiff))
		fmt.Printf("  lead sets    %s on %s\n",
			ledger.FormatMoney(s.LeadSetCommission), ledger.FormatMoney(s.LeadSetSale))
		fmt.Printf("  call-by-call %.1f%%  bonus %s\n",
			s.CallByCallScore*100, ledger.FormatMoney(s.KPIBonus))
		fmt.Printf("  total pay    %s\n", ledger.FormatMoney(s.TotalPay))
	}
}
