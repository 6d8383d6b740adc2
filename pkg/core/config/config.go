// Package config loads the engine configuration: backend selection, table
// names, the KPI source, and run tuning. Secrets (DATABASE_URL, credentials
// paths) stay in the environment; the YAML file carries only structure.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	// Backend selects the tabular provider: "sheets", "excel" or "memory".
	Backend string `yaml:"backend"`

	Sheets SheetsConfig `yaml:"sheets"`
	Excel  ExcelConfig  `yaml:"excel"`
	Tables TablesConfig `yaml:"tables"`
	Run    RunConfig    `yaml:"run"`
}

type SheetsConfig struct {
	SpreadsheetID    string `yaml:"spreadsheet_id"`
	KPISpreadsheetID string `yaml:"kpi_spreadsheet_id"`
	CredentialsFile  string `yaml:"credentials_file"`
}

type ExcelConfig struct {
	Path string `yaml:"path"`
}

// TablesConfig maps logical tables to physical sheet names, for backends
// whose sheets drifted from the canonical names.
type TablesConfig struct {
	Roster   string `yaml:"roster"`
	Spiff    string `yaml:"spiff"`
	PBP      string `yaml:"pbp"`
	YardSign string `yaml:"yard_sign"`
	Time     string `yaml:"time"`
	LeadSet  string `yaml:"lead_set"`
	Service  string `yaml:"service"`
	KPI      string `yaml:"kpi"`
}

type RunConfig struct {
	// CategoryTimeoutSeconds is the soft ceiling per category per
	// technician; past it the category is recorded as Error.
	CategoryTimeoutSeconds int `yaml:"category_timeout_seconds"`

	// PayPeriod overrides the backend's pay-period cell when set.
	PayPeriod string `yaml:"pay_period"`

	// Archive enables the Postgres run archive (requires DATABASE_URL).
	Archive bool `yaml:"archive"`
}

// Default returns the canonical configuration.
func Default() Config {
	return Config{
		Backend: "sheets",
		Tables: TablesConfig{
			Roster:   "Main",
			Spiff:    "Spiff/Bonus",
			PBP:      "PBP",
			YardSign: "Yard Sign",
			Time:     "Time Sheet",
			LeadSet:  "Lead Set",
			Service:  "Service",
			KPI:      "Call By Call",
		},
		Run: RunConfig{CategoryTimeoutSeconds: 20},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Backend {
	case "sheets", "excel", "memory":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == "sheets" && c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets backend requires sheets.spreadsheet_id")
	}
	if c.Backend == "excel" && c.Excel.Path == "" {
		return fmt.Errorf("excel backend requires excel.path")
	}
	if c.Run.CategoryTimeoutSeconds <= 0 {
		return fmt.Errorf("run.category_timeout_seconds must be positive")
	}
	return nil
}

// CategoryTimeout returns the per-category soft ceiling.
func (c Config) CategoryTimeout() time.Duration {
	return time.Duration(c.Run.CategoryTimeoutSeconds) * time.Second
}
