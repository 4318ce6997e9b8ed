package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
)

type fakeAttendanceRepo struct {
	records map[string]attendance.Attendance
	seq     int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func (f *fakeAttendanceRepo) byEmployeeAndDate(employeeID string, date time.Time) (attendance.Attendance, bool) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			return rec, true
		}
	}
	return attendance.Attendance{}, false
}

func (f *fakeAttendanceRepo) Create(_ context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	if _, ok := f.byEmployeeAndDate(record.EmployeeID, record.Date); ok {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	f.seq++
	record.ID = fmt.Sprintf("att-%d", f.seq)
	record.CreatedAt = time.Now().UTC()
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	rec, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	rec, ok := f.byEmployeeAndDate(employeeID, date)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeAttendanceRepo) AttachCheckIn(_ context.Context, record attendance.Attendance) error {
	current, ok := f.records[record.ID]
	if !ok || current.CheckInTime != nil {
		return attendance.ErrAlreadyCheckedIn
	}
	current.Type = record.Type
	current.CheckInTime = record.CheckInTime
	current.CheckIn = record.CheckIn
	current.Status = record.Status
	current.IsLate = record.IsLate
	current.LateMinutes = record.LateMinutes
	f.records[record.ID] = current
	return nil
}

func (f *fakeAttendanceRepo) CompleteCheckOut(_ context.Context, record attendance.Attendance) error {
	current, ok := f.records[record.ID]
	if !ok || current.CheckOutTime != nil || current.AutoCorrected {
		return attendance.ErrAlreadyCheckedOut
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceRepo) BeginOvertime(_ context.Context, record attendance.Attendance) error {
	current, ok := f.records[record.ID]
	if !ok || current.OTStatus == attendance.OTInProgress {
		return attendance.ErrOvertimeInProgress
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceRepo) FinishOvertime(_ context.Context, record attendance.Attendance) error {
	current, ok := f.records[record.ID]
	if !ok || current.OTStatus != attendance.OTInProgress {
		return attendance.ErrOvertimeNotInProgress
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceRepo) GetOvertimeInProgress(_ context.Context, employeeID string) (*attendance.Attendance, error) {
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.OTStatus == attendance.OTInProgress {
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) ListOpen(_ context.Context) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.CheckInTime != nil && rec.CheckOutTime == nil && !rec.AutoCorrected {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) AutoClose(_ context.Context, id string, checkOutTime time.Time, workingHours float64, status attendance.Status) error {
	current, ok := f.records[id]
	if !ok || current.CheckOutTime != nil || current.AutoCorrected {
		return nil
	}
	current.CheckOutTime = &checkOutTime
	current.WorkingHours = workingHours
	current.Status = status
	current.AutoCorrected = true
	f.records[id] = current
	return nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.Filter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) SummaryForPeriod(_ context.Context, employeeID string, from, to time.Time) (attendance.PeriodSummary, error) {
	summary := attendance.PeriodSummary{EmployeeID: employeeID}
	for _, rec := range f.records {
		if rec.EmployeeID != employeeID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if rec.Status != attendance.StatusAbsent {
			summary.PresentDays++
			summary.CreditedDates = append(summary.CreditedDates, rec.Date.Format("2006-01-02"))
		}
		if rec.OTStatus == attendance.OTCompleted {
			summary.OvertimeHours += rec.OvertimeHours
		}
	}
	return summary, nil
}

type fakeEmployeeDirectory struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeDirectory) Resolve(_ context.Context, identifier string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == identifier || emp.EmployeeCode == identifier {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotResolved
}

func (f *fakeEmployeeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeDirectory) ListActive(_ context.Context, _ string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, nil
}

type fakeTiming struct {
	dept     department.Department
	holidays map[string]bool
}

func (f *fakeTiming) DepartmentFor(_ context.Context, _ string) (department.Department, error) {
	return f.dept, nil
}

func (f *fakeTiming) IsHoliday(_ context.Context, _ string, date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

func (f *fakeTiming) Invalidate(_ string) {}

// fakeFileService records uploads without touching storage.
type fakeFileService struct {
	uploads []string
}

func (f *fakeFileService) UploadAttendanceProof(_ context.Context, employeeID string, _ time.Time, _ io.Reader, _ string, kind string) (string, error) {
	path := fmt.Sprintf("attendance/%s-%s.jpg", employeeID, kind)
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeFileService) UploadOvertimeProof(_ context.Context, employeeID string, _ time.Time, _ io.Reader, _ string, kind string) (string, error) {
	path := fmt.Sprintf("overtime/%s-%s.jpg", employeeID, kind)
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeFileService) UploadLeaveAttachment(_ context.Context, employeeID string, _ io.Reader, _ string) (string, error) {
	return "leave/" + employeeID + ".jpg", nil
}

func (f *fakeFileService) DeleteFile(_ context.Context, _ string) error { return nil }

func (f *fakeFileService) GetFileURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return path, nil
}

type svcFixture struct {
	svc   *AttendanceServiceImpl
	repo  *fakeAttendanceRepo
	files *fakeFileService
	time  *fakeTiming
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()

	repo := newFakeAttendanceRepo()
	files := &fakeFileService{}
	timing := &fakeTiming{
		dept:     department.Department{ID: "dept-1", Timing: officeTiming, RestDays: []time.Weekday{time.Sunday}},
		holidays: map[string]bool{},
	}
	emps := &fakeEmployeeDirectory{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", EmployeeCode: "E001", DepartmentID: "dept-1", Status: employee.StatusActive},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAttendanceService(repo, emps, timing, files, nil, logger)

	return &svcFixture{svc: svc, repo: repo, files: files, time: timing}
}

func (f *svcFixture) setNow(now time.Time) {
	f.svc.now = func() time.Time { return now }
}

func proofHeader() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "proof.jpg", Size: 1 << 10}
}

func checkInReq() attendance.CheckInRequest {
	return attendance.CheckInRequest{
		EmployeeID: "emp-1",
		Latitude:   12.9716,
		Longitude:  77.5946,
		Type:       string(attendance.TypeOffice),
		FileHeader: proofHeader(),
	}
}

func checkOutReq() attendance.CheckOutRequest {
	return attendance.CheckOutRequest{
		EmployeeID: "emp-1",
		Latitude:   12.9716,
		Longitude:  77.5946,
		FileHeader: proofHeader(),
	}
}

func overtimeStartReq() attendance.StartOvertimeRequest {
	return attendance.StartOvertimeRequest{
		EmployeeID: "emp-1",
		Latitude:   12.9716,
		Longitude:  77.5946,
		FileHeader: proofHeader(),
	}
}

func overtimeEndReq() attendance.EndOvertimeRequest {
	return attendance.EndOvertimeRequest{
		EmployeeID: "emp-1",
		Latitude:   12.9716,
		Longitude:  77.5946,
		FileHeader: proofHeader(),
	}
}

func TestCheckInOnTime(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 35))

	resp, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	assert.False(t, resp.IsLate)
	assert.NotNil(t, resp.CheckInTime)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, "attendance/emp-1-check_in.jpg", resp.CheckIn.PhotoURL)
}

func TestCheckInLatePastThreshold(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(10, 0))

	resp, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), resp.Status)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 30, resp.LateMinutes)
}

func TestCheckInOutsideWindow(t *testing.T) {
	f := newSvcFixture(t)

	f.setNow(at(8, 0))
	_, err := f.svc.CheckIn(context.Background(), checkInReq())
	assert.ErrorIs(t, err, attendance.ErrBeforeCheckInWindow)

	f.setNow(at(19, 0))
	_, err = f.svc.CheckIn(context.Background(), checkInReq())
	assert.ErrorIs(t, err, attendance.ErrAfterCheckOutWindow)
}

func TestCheckInTwiceSameDay(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 35))

	_, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), checkInReq())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckOutFullDay(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 30))
	_, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	f.setNow(at(18, 30))
	resp, err := f.svc.CheckOut(context.Background(), checkOutReq())
	require.NoError(t, err)

	assert.Equal(t, 9.0, resp.WorkingHours)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	require.NotNil(t, resp.CheckOut)
}

func TestCheckOutTwiceKeepsFirstResult(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 30))
	_, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	f.setNow(at(18, 30))
	first, err := f.svc.CheckOut(context.Background(), checkOutReq())
	require.NoError(t, err)

	f.setNow(at(19, 0))
	_, err = f.svc.CheckOut(context.Background(), checkOutReq())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	stored := f.repo.records[first.ID]
	assert.Equal(t, 9.0, stored.WorkingHours)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(18, 30))

	_, err := f.svc.CheckOut(context.Background(), checkOutReq())
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutUnderHalfHoursIsHalfDay(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 30))
	_, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	f.setNow(at(12, 30))
	resp, err := f.svc.CheckOut(context.Background(), checkOutReq())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusHalfDay), resp.Status)
}

func TestOvertimeLifecycle(t *testing.T) {
	f := newSvcFixture(t)

	f.setNow(at(7, 0))
	started, err := f.svc.StartOvertime(context.Background(), overtimeStartReq())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.OTInProgress), started.OTStatus)
	require.NotNil(t, started.OTType)
	assert.Equal(t, string(attendance.OTEarlyArrival), *started.OTType)
	// No regular check-in yet: the day's record exists but earns nothing.
	assert.Equal(t, string(attendance.StatusAbsent), started.Status)

	_, err = f.svc.StartOvertime(context.Background(), overtimeStartReq())
	assert.ErrorIs(t, err, attendance.ErrOvertimeInProgress)

	f.setNow(at(9, 0))
	ended, err := f.svc.EndOvertime(context.Background(), overtimeEndReq())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.OTCompleted), ended.OTStatus)
	assert.Equal(t, 2.0, ended.OvertimeHours)
	assert.Equal(t, 2.0, ended.ManualOTHours)
	assert.Equal(t, 2.0, ended.WorkingHours)

	_, err = f.svc.EndOvertime(context.Background(), overtimeEndReq())
	assert.ErrorIs(t, err, attendance.ErrOvertimeNotInProgress)
}

func TestOvertimeOnHoliday(t *testing.T) {
	f := newSvcFixture(t)
	f.time.holidays["2026-06-09"] = true

	f.setNow(at(7, 0))
	started, err := f.svc.StartOvertime(context.Background(), overtimeStartReq())
	require.NoError(t, err)

	require.NotNil(t, started.OTType)
	assert.Equal(t, string(attendance.OTHoliday), *started.OTType)
}

func TestEndOvertimeClosesOvernightSession(t *testing.T) {
	f := newSvcFixture(t)

	f.setNow(time.Date(2026, 6, 9, 19, 0, 0, 0, time.UTC))
	started, err := f.svc.StartOvertime(context.Background(), overtimeStartReq())
	require.NoError(t, err)

	// Past midnight the session still ends against the record it opened.
	f.setNow(time.Date(2026, 6, 10, 1, 0, 0, 0, time.UTC))
	ended, err := f.svc.EndOvertime(context.Background(), overtimeEndReq())
	require.NoError(t, err)

	assert.Equal(t, started.ID, ended.ID)
	assert.Equal(t, string(attendance.OTCompleted), ended.OTStatus)
	assert.Equal(t, 6.0, ended.OvertimeHours)

	// And the closed session no longer blocks a fresh one.
	_, err = f.svc.StartOvertime(context.Background(), overtimeStartReq())
	require.NoError(t, err)
}

func TestCheckInJoinsOvertimeOpenedRecord(t *testing.T) {
	f := newSvcFixture(t)

	f.setNow(at(7, 0))
	started, err := f.svc.StartOvertime(context.Background(), overtimeStartReq())
	require.NoError(t, err)

	f.setNow(at(9, 0))
	_, err = f.svc.EndOvertime(context.Background(), overtimeEndReq())
	require.NoError(t, err)

	f.setNow(at(9, 35))
	checkedIn, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	// Same day record: the check-in attaches instead of creating a second row.
	assert.Equal(t, started.ID, checkedIn.ID)
	assert.Equal(t, string(attendance.StatusPresent), checkedIn.Status)
	assert.Equal(t, 2.0, checkedIn.OvertimeHours)

	// Check-out folds the manual session into the day's total.
	f.setNow(at(18, 30))
	final, err := f.svc.CheckOut(context.Background(), checkOutReq())
	require.NoError(t, err)
	// 8h55m regular plus the two-hour morning session.
	assert.InDelta(t, 10.92, final.WorkingHours, 0.001)
}

func TestSweepClosesStaleRecord(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 30))
	checkedIn, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	// An hour of grace past the 6:30 PM close has elapsed.
	f.setNow(at(19, 45))
	require.NoError(t, f.svc.Sweep(context.Background(), time.Hour))

	stored := f.repo.records[checkedIn.ID]
	assert.True(t, stored.AutoCorrected)
	require.NotNil(t, stored.CheckOutTime)
	assert.Equal(t, at(19, 30), *stored.CheckOutTime)
	assert.Equal(t, 10.0, stored.WorkingHours)

	// The sweep leaves nothing open, so running it again is a no-op.
	require.NoError(t, f.svc.Sweep(context.Background(), time.Hour))

	// A late manual check-out attempt hits the lock.
	_, err = f.svc.CheckOut(context.Background(), checkOutReq())
	assert.ErrorIs(t, err, attendance.ErrRecordLocked)
}

func TestSweepWaitsForGrace(t *testing.T) {
	f := newSvcFixture(t)
	f.setNow(at(9, 30))
	checkedIn, err := f.svc.CheckIn(context.Background(), checkInReq())
	require.NoError(t, err)

	f.setNow(at(19, 0))
	require.NoError(t, f.svc.Sweep(context.Background(), time.Hour))

	stored := f.repo.records[checkedIn.ID]
	assert.False(t, stored.AutoCorrected)
	assert.Nil(t, stored.CheckOutTime)
}
