package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	// GetActiveStructure returns the salary structure covering the given
	// date for the employee. Exactly one is active; none maps to
	// ErrStructureNotFound.
	GetActiveStructure(ctx context.Context, employeeID string, at time.Time) (SalaryStructure, error)

	// ListEmployeesWithActiveStructure returns the IDs of employees holding
	// a structure active at any point inside [from, to], optionally filtered
	// by department.
	ListEmployeesWithActiveStructure(ctx context.Context, from, to time.Time, departmentID string) ([]string, error)

	UpsertStructure(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)
	GetStructuresByEmployee(ctx context.Context, employeeID string) ([]SalaryStructure, error)

	GetSettings(ctx context.Context) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)

	// UpsertRecord writes the (employee, month, year) record, overwriting
	// any previous run deterministically.
	UpsertRecord(ctx context.Context, record Record) (Record, error)

	GetRecordByID(ctx context.Context, id string) (Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, int64, error)
	UpdateRecord(ctx context.Context, record Record) error

	// UpdateRecordStatus advances status conditional on the expected current
	// value; zero rows affected surfaces ErrInvalidStatusChange.
	UpdateRecordStatus(ctx context.Context, id string, from, to RecordStatus) error
}

// PayrollService defines the aggregation engine operations.
type PayrollService interface {
	BulkProcess(ctx context.Context, req ProcessRequest) (ProcessResponse, error)
	GetRecord(ctx context.Context, id string) (RecordResponse, error)
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (RecordResponse, error)
	ApproveRecord(ctx context.Context, id string) error
	MarkRecordPaid(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
	GetStructures(ctx context.Context, employeeID string) ([]SalaryStructure, error)
	UpsertStructure(ctx context.Context, req UpsertStructureRequest) (SalaryStructure, error)
}
