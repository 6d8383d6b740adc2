// Package source abstracts the tabular backend that holds the roster, the
// input tables and the technician ledgers. Three implementations exist:
// an in-memory provider for tests, a Google Sheets provider (the canonical
// backend) and an XLSX workbook provider for offline periods.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolai-cardinal/Payroll-sub001/pkg/models"
)

// Canonical table names. Providers map them onto their physical sheets.
const (
	TableRoster   = "Main"
	TableSpiff    = "Spiff/Bonus"
	TablePBP      = "PBP"
	TableYardSign = "Yard Sign"
	TableTime     = "Time Sheet"
	TableLeadSet  = "Lead Set"
	TableService  = "Service"
)

// Provider is the logical surface the engine reads inputs from and writes
// ledgers to. Implementations must preserve ledger rows they do not own.
type Provider interface {
	// ListRoster reads the canonical roster table.
	ListRoster(ctx context.Context) ([]models.RosterRow, error)

	// PayPeriodText reads the pay-period display string from its fixed cell.
	PayPeriodText(ctx context.Context) (string, error)

	// ReadTable bulk-reads one input table, header row first.
	ReadTable(ctx context.Context, name string) ([][]string, error)

	// ReadLedger loads a technician's current ledger, or NotFound.
	ReadLedger(ctx context.Context, tech string) (*models.TechnicianLedger, error)

	// WriteLedger persists a technician's ledger. The ledger is the unit of
	// atomicity: a write either lands whole or not at all.
	WriteLedger(ctx context.Context, tech string, ledger *models.TechnicianLedger) error

	// UpdateRosterPay mirrors the technician's total pay into the roster's
	// Pay column.
	UpdateRosterPay(ctx context.Context, tech string, totalPay float64) error
}

// ErrorCode classifies provider failures.
type ErrorCode string

const (
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeBackend  ErrorCode = "BACKEND"
)

// Error is a structured provider error carrying the failure class, the
// table or technician involved, and the wrapped cause.
type Error struct {
	Code    ErrorCode
	Subject string // table name or technician name
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s %s: %v", e.Code, e.Subject, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s %s", e.Code, e.Subject, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NotFound builds a NOT_FOUND error for a missing table or ledger.
func NotFound(subject string) *Error {
	return &Error{Code: CodeNotFound, Subject: subject, Message: "not found"}
}

// Backend wraps an I/O failure.
func Backend(subject string, cause error) *Error {
	return &Error{Code: CodeBackend, Subject: subject, Message: "backend failure", Cause: cause}
}

// IsNotFound reports whether err is a NOT_FOUND provider error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotFound
}
