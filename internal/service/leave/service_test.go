package leave

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
)

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) Resolve(_ context.Context, identifier string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == identifier || emp.EmployeeCode == identifier {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotResolved
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context, _ string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Status == employee.StatusActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

type fakeApplicationRepo struct {
	apps map[string]leave.Application
	seq  int
}

func (f *fakeApplicationRepo) Create(_ context.Context, app leave.Application) (leave.Application, error) {
	f.seq++
	app.ID = fmt.Sprintf("app-%d", f.seq)
	app.CreatedAt = time.Now().UTC()
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id string) (leave.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return leave.Application{}, leave.ErrApplicationNotFound
	}
	return app, nil
}

func (f *fakeApplicationRepo) UpdateStatus(_ context.Context, app leave.Application, expected leave.Status) error {
	current, ok := f.apps[app.ID]
	if !ok || current.Status != expected {
		return leave.ErrAlreadyProcessed
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeApplicationRepo) HasOverlapping(_ context.Context, employeeID string, start, end time.Time) (bool, error) {
	for _, app := range f.apps {
		if app.EmployeeID != employeeID || app.Status.IsTerminal() && app.Status != leave.StatusApproved {
			continue
		}
		if !app.StartDate.After(end) && !app.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) List(_ context.Context, filter leave.Filter) ([]leave.Application, int64, error) {
	var out []leave.Application
	for _, app := range f.apps {
		if filter.EmployeeID != "" && app.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, app)
	}
	return out, int64(len(out)), nil
}

func (f *fakeApplicationRepo) ApprovedInPeriod(_ context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range f.apps {
		if app.EmployeeID == employeeID && app.Status == leave.StatusApproved &&
			!app.StartDate.After(to) && !app.EndDate.Before(from) {
			out = append(out, app)
		}
	}
	return out, nil
}

type fakeBalanceRepo struct {
	balances map[string]leave.Balance
	accruals map[string]struct{}
}

func (f *fakeBalanceRepo) GetByEmployee(_ context.Context, employeeID string) (leave.Balance, error) {
	return f.balances[employeeID], nil
}

func (f *fakeBalanceRepo) AdjustBalance(_ context.Context, employeeID string, casualDays, permissionHours float64) error {
	b := f.balances[employeeID]
	b.EmployeeID = employeeID
	b.CasualDays += casualDays
	b.PermissionHours += permissionHours
	f.balances[employeeID] = b
	return nil
}

func (f *fakeBalanceRepo) RecordAccrual(_ context.Context, entry leave.AccrualEntry) (bool, error) {
	key := fmt.Sprintf("%s/%d-%d", entry.EmployeeID, entry.Year, entry.Month)
	if _, ok := f.accruals[key]; ok {
		return false, nil
	}
	f.accruals[key] = struct{}{}
	return true, nil
}

// fakePayrollRepo serves only the structure lookup the approval path needs;
// the embedded interface panics on anything else.
type fakePayrollRepo struct {
	payroll.PayrollRepository
	structure payroll.SalaryStructure
}

func (f *fakePayrollRepo) GetActiveStructure(_ context.Context, _ string, _ time.Time) (payroll.SalaryStructure, error) {
	return f.structure, nil
}

type fakeTimingProvider struct {
	dept     department.Department
	holidays map[string]bool
}

func (f *fakeTimingProvider) DepartmentFor(_ context.Context, _ string) (department.Department, error) {
	return f.dept, nil
}

func (f *fakeTimingProvider) IsHoliday(_ context.Context, _ string, date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

func (f *fakeTimingProvider) Invalidate(_ string) {}

// stubAttachment satisfies multipart.File on top of an in-memory reader.
type stubAttachment struct {
	*strings.Reader
}

func (stubAttachment) Close() error { return nil }

// fakeFileService records uploads and deletions without touching storage.
type fakeFileService struct {
	uploads []string
	deletes []string
}

func (f *fakeFileService) UploadAttendanceProof(_ context.Context, _ string, _ time.Time, _ io.Reader, _ string, _ string) (string, error) {
	panic("attendance proofs are not uploaded from leave")
}

func (f *fakeFileService) UploadOvertimeProof(_ context.Context, _ string, _ time.Time, _ io.Reader, _ string, _ string) (string, error) {
	panic("overtime proofs are not uploaded from leave")
}

func (f *fakeFileService) UploadLeaveAttachment(_ context.Context, employeeID string, _ io.Reader, filename string) (string, error) {
	path := "leave/" + employeeID + "/" + filename
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeFileService) DeleteFile(_ context.Context, path string) error {
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeFileService) GetFileURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://files.local/" + path, nil
}

type fixture struct {
	svc      *LeaveServiceImpl
	apps     *fakeApplicationRepo
	balances *fakeBalanceRepo
	emps     *fakeEmployeeRepo
	files    *fakeFileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	emps := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", EmployeeCode: "E001", DepartmentID: "dept-1", Status: employee.StatusActive},
		"emp-2": {ID: "emp-2", EmployeeCode: "E002", DepartmentID: "dept-1", Status: employee.StatusActive},
	}}
	apps := &fakeApplicationRepo{apps: map[string]leave.Application{}}
	balances := &fakeBalanceRepo{
		balances: map[string]leave.Balance{},
		accruals: map[string]struct{}{},
	}
	payrollRepo := &fakePayrollRepo{structure: payroll.SalaryStructure{
		EmployeeID: "emp-1",
		FixedBasic: decimal.RequireFromString("15000"),
	}}
	timing := &fakeTimingProvider{
		dept:     department.Department{ID: "dept-1", RestDays: []time.Weekday{time.Sunday}},
		holidays: map[string]bool{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	files := &fakeFileService{}
	svc := NewLeaveService(nil, apps, balances, emps, payrollRepo, timing, files, logger)

	return &fixture{svc: svc, apps: apps, balances: balances, emps: emps, files: files}
}

func TestApplyConvertsExcessToUnpaid(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", CasualDays: 1}

	// Tue 2026-06-09 .. Wed 2026-06-10 with one day in balance.
	resp, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeCasual),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-10",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(2), resp.TotalDays)
	assert.Equal(t, float64(1), resp.CasualDays)
	assert.Equal(t, float64(1), resp.UnpaidDays)
	assert.Equal(t, string(leave.StatusPendingTL), resp.Status)

	// The balance itself is untouched until HR approval.
	assert.Equal(t, float64(1), f.balances.balances["emp-1"].CasualDays)
}

func TestApplyZeroBalanceGoesFullyUnpaid(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "E001",
		Type:       string(leave.TypeCasual),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-09",
	})
	require.NoError(t, err)

	assert.Zero(t, resp.CasualDays)
	assert.Equal(t, float64(1), resp.UnpaidDays)
}

func TestApplyRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeUnpaid),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-11",
	})
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeCasual),
		StartDate:  "2026-06-11",
		EndDate:    "2026-06-12",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
}

func TestApplyRejectsRestDay(t *testing.T) {
	f := newFixture(t)

	// 2026-06-14 is a Sunday.
	_, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeUnpaid),
		StartDate:  "2026-06-12",
		EndDate:    "2026-06-15",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveOnRestDay)
}

func TestApplyStoresAttachment(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", CasualDays: 3}

	resp, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID:       "emp-1",
		Type:             string(leave.TypeCasual),
		StartDate:        "2026-06-09",
		EndDate:          "2026-06-09",
		Attachment:       stubAttachment{strings.NewReader("scan")},
		AttachmentHeader: &multipart.FileHeader{Filename: "medical.pdf", Size: 1 << 10},
	})
	require.NoError(t, err)

	require.Len(t, f.files.uploads, 1)
	assert.Equal(t, "leave/emp-1/medical.pdf", f.files.uploads[0])
	// The response carries a resolvable link, never the raw storage path.
	require.NotNil(t, resp.AttachmentURL)
	assert.Equal(t, "https://files.local/leave/emp-1/medical.pdf", *resp.AttachmentURL)
}

func TestApplyRejectsOversizedAttachment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID:       "emp-1",
		Type:             string(leave.TypeUnpaid),
		StartDate:        "2026-06-09",
		EndDate:          "2026-06-09",
		Attachment:       stubAttachment{strings.NewReader("scan")},
		AttachmentHeader: &multipart.FileHeader{Filename: "medical.pdf", Size: 11 << 20},
	})
	require.Error(t, err)
	assert.Empty(t, f.files.uploads)
}

func TestCancelDeletesAttachment(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", CasualDays: 3}

	resp, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID:       "emp-1",
		Type:             string(leave.TypeCasual),
		StartDate:        "2026-06-09",
		EndDate:          "2026-06-09",
		Attachment:       stubAttachment{strings.NewReader("scan")},
		AttachmentHeader: &multipart.FileHeader{Filename: "medical.pdf", Size: 1 << 10},
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), resp.ID, "emp-1")
	require.NoError(t, err)

	require.Len(t, f.files.deletes, 1)
	assert.Equal(t, "leave/emp-1/medical.pdf", f.files.deletes[0])
}

func TestApplyPermissionNeedsBalance(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", PermissionHours: 1}

	_, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID:      "emp-1",
		Type:            string(leave.TypePermission),
		StartDate:       "2026-06-09",
		EndDate:         "2026-06-09",
		PermissionHours: 2,
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientPermission)
}

func TestApproveTwoLevelFlow(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", CasualDays: 1}

	applied, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeCasual),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-10",
	})
	require.NoError(t, err)

	// HR cannot act before the team lead.
	_, err = f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID,
		Level:         string(leave.LevelHR),
		ApproverID:    "hr-1",
	})
	assert.ErrorIs(t, err, leave.ErrWrongApprovalLevel)

	afterTL, err := f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID,
		Level:         string(leave.LevelTL),
		ApproverID:    "tl-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusPendingHR), afterTL.Status)

	final, err := f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID,
		Level:         string(leave.LevelHR),
		ApproverID:    "hr-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), final.Status)
	assert.True(t, final.AffectsPayroll)

	// One unpaid day at 15000 basic over the 30 days of June.
	assert.Equal(t, "500.00", final.DeductionAmount)

	// The casual day is consumed exactly once.
	assert.Zero(t, f.balances.balances["emp-1"].CasualDays)
}

func TestApproveFullyPaidLeaveDoesNotTouchPayroll(t *testing.T) {
	f := newFixture(t)
	f.balances.balances["emp-1"] = leave.Balance{EmployeeID: "emp-1", CasualDays: 3}

	applied, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeCasual),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-10",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID, Level: string(leave.LevelTL), ApproverID: "tl-1",
	})
	require.NoError(t, err)
	final, err := f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID, Level: string(leave.LevelHR), ApproverID: "hr-1",
	})
	require.NoError(t, err)

	assert.False(t, final.AffectsPayroll)
	assert.Equal(t, "0.00", final.DeductionAmount)
	assert.Equal(t, float64(1), f.balances.balances["emp-1"].CasualDays)
}

func TestApproveTerminalApplication(t *testing.T) {
	f := newFixture(t)

	applied, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeUnpaid),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-09",
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID, Level: string(leave.LevelTL), ApproverID: "tl-1", Reason: "coverage",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID, Level: string(leave.LevelTL), ApproverID: "tl-1",
	})
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
}

func TestRejectRecordsReasonAndLevel(t *testing.T) {
	f := newFixture(t)

	applied, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeUnpaid),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-09",
	})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(context.Background(), leave.DecisionRequest{
		ApplicationID: applied.ID, Level: string(leave.LevelTL), ApproverID: "tl-1", Reason: "short staffed",
	})
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusRejectedByTL), rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "short staffed", *rejected.RejectionReason)
}

func TestCancelOnlyByOwnerWhilePending(t *testing.T) {
	f := newFixture(t)

	applied, err := f.svc.Apply(context.Background(), leave.ApplyRequest{
		EmployeeID: "emp-1",
		Type:       string(leave.TypeUnpaid),
		StartDate:  "2026-06-09",
		EndDate:    "2026-06-09",
	})
	require.NoError(t, err)

	// Someone else's application looks like it does not exist.
	_, err = f.svc.Cancel(context.Background(), applied.ID, "emp-2")
	assert.ErrorIs(t, err, leave.ErrApplicationNotFound)

	cancelled, err := f.svc.Cancel(context.Background(), applied.ID, "E001")
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), cancelled.Status)

	_, err = f.svc.Cancel(context.Background(), applied.ID, "emp-1")
	assert.ErrorIs(t, err, leave.ErrCancelAfterDecision)
}

func TestAccrueIsIdempotentWithinMonth(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Accrue(context.Background()))
	require.NoError(t, f.svc.Accrue(context.Background()))

	for _, id := range []string{"emp-1", "emp-2"} {
		b := f.balances.balances[id]
		assert.Equal(t, monthlyCasualAccrual, b.CasualDays, "employee %s", id)
		assert.Equal(t, monthlyPermissionAccrual, b.PermissionHours, "employee %s", id)
	}
}
