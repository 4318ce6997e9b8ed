package payroll

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stafftrack/wfm-backend-go/internal/config"
	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
)

// bulkPayrollRepo serves the bulk-run paths with mutex-guarded maps; the
// workers hit it concurrently. The embedded interface panics on anything the
// run should never touch.
type bulkPayrollRepo struct {
	payroll.PayrollRepository

	mu         sync.Mutex
	employees  []string
	structures map[string]payroll.SalaryStructure
	records    map[string]payroll.Record
}

func (f *bulkPayrollRepo) GetSettings(_ context.Context) (payroll.Settings, error) {
	return payroll.Settings{}, payroll.ErrSettingsNotFound
}

func (f *bulkPayrollRepo) ListEmployeesWithActiveStructure(_ context.Context, _, _ time.Time, _ string) ([]string, error) {
	return f.employees, nil
}

func (f *bulkPayrollRepo) GetActiveStructure(_ context.Context, employeeID string, _ time.Time) (payroll.SalaryStructure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.structures[employeeID]
	if !ok {
		return payroll.SalaryStructure{}, payroll.ErrStructureNotFound
	}
	return s, nil
}

func (f *bulkPayrollRepo) UpsertRecord(_ context.Context, record payroll.Record) (payroll.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = "rec-" + record.EmployeeID
	f.records[record.EmployeeID] = record
	return record, nil
}

type stubAttendanceRepo struct {
	attendance.AttendanceRepository
	summaries map[string]attendance.PeriodSummary
}

func (f *stubAttendanceRepo) SummaryForPeriod(_ context.Context, employeeID string, _, _ time.Time) (attendance.PeriodSummary, error) {
	return f.summaries[employeeID], nil
}

type stubLeaveRepo struct {
	leave.ApplicationRepository
}

func (f *stubLeaveRepo) ApprovedInPeriod(_ context.Context, _ string, _, _ time.Time) ([]leave.Application, error) {
	return nil, nil
}

type stubAdvanceRepo struct {
	due map[string]decimal.Decimal
}

func (f *stubAdvanceRepo) InstallmentsDue(_ context.Context, employeeID string, _, _ int) (decimal.Decimal, error) {
	if amount, ok := f.due[employeeID]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

func bulkConfig() config.PayrollConfig {
	return config.PayrollConfig{
		EPFEmployeeRate:    "0.12",
		EPFCeilingAmount:   "1800",
		ESIEmployeeRate:    "0.0075",
		ESIThreshold:       "21000",
		StandardDailyHours: 8,
		OvertimeMultiplier: "1.5",
		BulkWorkerLimit:    4,
	}
}

func TestBulkProcessContinuesPastFailures(t *testing.T) {
	repo := &bulkPayrollRepo{
		employees: []string{"emp-1", "emp-2", "emp-3"},
		structures: map[string]payroll.SalaryStructure{
			"emp-1": {EmployeeID: "emp-1", FixedBasic: dec("12000"), EPFApplicable: true},
			"emp-3": {EmployeeID: "emp-3", FixedBasic: dec("9000")},
		},
		records: map[string]payroll.Record{},
	}
	attRepo := &stubAttendanceRepo{summaries: map[string]attendance.PeriodSummary{
		"emp-1": {EmployeeID: "emp-1", PresentDays: 30},
		"emp-3": {EmployeeID: "emp-3", PresentDays: 15},
	}}
	advRepo := &stubAdvanceRepo{due: map[string]decimal.Decimal{
		"emp-1": dec("1000"),
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPayrollService(repo, nil, attRepo, &stubLeaveRepo{}, advRepo, bulkConfig(), logger)

	resp, err := svc.BulkProcess(context.Background(), payroll.ProcessRequest{Month: 6, Year: 2026})
	require.NoError(t, err)

	// emp-2 has no structure; the run reports it and keeps going.
	assert.Equal(t, 2, resp.Processed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "emp-2", resp.Errors[0].EmployeeID)

	// Output is ordered by employee regardless of worker completion order.
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "emp-1", resp.Records[0].EmployeeID)
	assert.Equal(t, "emp-3", resp.Records[1].EmployeeID)

	full := repo.records["emp-1"]
	assert.True(t, full.EarnedBasic.Equal(dec("12000")))
	assert.True(t, full.EPFDeduction.Equal(dec("1440")), "epf = %s", full.EPFDeduction)
	assert.True(t, full.AdvanceDeduction.Equal(dec("1000")))

	half := repo.records["emp-3"]
	assert.True(t, half.EarnedBasic.Equal(dec("4500")), "basic = %s", half.EarnedBasic)
	assert.True(t, half.EPFDeduction.IsZero())
}

func TestBulkProcessRerunOverwritesDeterministically(t *testing.T) {
	repo := &bulkPayrollRepo{
		employees: []string{"emp-1"},
		structures: map[string]payroll.SalaryStructure{
			"emp-1": {EmployeeID: "emp-1", FixedBasic: dec("12000")},
		},
		records: map[string]payroll.Record{},
	}
	attRepo := &stubAttendanceRepo{summaries: map[string]attendance.PeriodSummary{
		"emp-1": {EmployeeID: "emp-1", PresentDays: 30},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPayrollService(repo, nil, attRepo, &stubLeaveRepo{}, &stubAdvanceRepo{}, bulkConfig(), logger)

	first, err := svc.BulkProcess(context.Background(), payroll.ProcessRequest{Month: 6, Year: 2026})
	require.NoError(t, err)
	second, err := svc.BulkProcess(context.Background(), payroll.ProcessRequest{Month: 6, Year: 2026})
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
}

func TestBulkProcessRejectsBadPeriod(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPayrollService(&bulkPayrollRepo{}, nil, &stubAttendanceRepo{}, &stubLeaveRepo{}, &stubAdvanceRepo{}, bulkConfig(), logger)

	_, err := svc.BulkProcess(context.Background(), payroll.ProcessRequest{Month: 13, Year: 2026})
	assert.Error(t, err)
}
