package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/geocode"
	"github.com/stafftrack/wfm-backend-go/internal/service/file"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	timingProvider department.TimingProvider
	fileService    file.FileService
	geocoder       *geocode.Client
	logger         *slog.Logger

	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	timingProvider department.TimingProvider,
	fileService file.FileService,
	geocoder *geocode.Client,
	logger *slog.Logger,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		timingProvider: timingProvider,
		fileService:    fileService,
		geocoder:       geocoder,
		logger:         logger,
		now:            time.Now,
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// buildEvidence uploads the proof photo first, then attaches a best-effort
// address. Nothing is written to the database until the photo reference is
// durable; geocoding failure degrades to raw coordinates.
func (s *AttendanceServiceImpl) buildEvidence(ctx context.Context, employeeID string, date time.Time, lat, lon float64, accuracy *float64, upload func() (string, error)) (*attendance.Evidence, error) {
	photoURL, err := upload()
	if err != nil {
		return nil, err
	}

	ev := &attendance.Evidence{
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  accuracy,
		PhotoURL:  photoURL,
	}

	if s.geocoder != nil {
		if address, err := s.geocoder.ReverseLookup(ctx, lat, lon); err != nil {
			s.logger.Warn("reverse geocoding failed, keeping raw coordinates",
				slog.String("employee_id", employeeID),
				slog.Any("error", err),
			)
		} else {
			ev.Address = &address
		}
	}

	return ev, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	dept, err := s.timingProvider.DepartmentFor(ctx, emp.DepartmentID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := dateOf(now)

	window, err := resolveWindow(dept.Timing, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	status, isLate, lateMinutes, err := classifyCheckIn(now, window)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if existing != nil && existing.CheckInTime != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	evidence, err := s.buildEvidence(ctx, emp.ID, today, req.Latitude, req.Longitude, req.Accuracy, func() (string, error) {
		return s.fileService.UploadAttendanceProof(ctx, emp.ID, today, req.File, req.FileHeader.Filename, "check_in")
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record := attendance.Attendance{
		EmployeeID:  emp.ID,
		Date:        today,
		Type:        attendance.Type(req.Type),
		CheckInTime: &now,
		CheckIn:     evidence,
		Status:      status,
		IsLate:      isLate,
		LateMinutes: lateMinutes,
		OTStatus:    attendance.OTNotStarted,
		Reason:      req.Reason,
	}

	if existing != nil {
		// The day's record was opened by an overtime session.
		record.ID = existing.ID
		if err := s.attendanceRepo.AttachCheckIn(ctx, record); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		saved, err := s.attendanceRepo.GetByID(ctx, existing.ID)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		return s.toResponse(ctx, saved), nil
	}

	saved, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.toResponse(ctx, saved), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := dateOf(now)

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil || record.CheckInTime == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if record.AutoCorrected {
		return attendance.AttendanceResponse{}, attendance.ErrRecordLocked
	}
	if record.CheckOutTime != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if now.Before(*record.CheckInTime) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckOutBeforeCheckIn
	}

	dept, err := s.timingProvider.DepartmentFor(ctx, emp.DepartmentID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	window, err := resolveWindow(dept.Timing, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	evidence, err := s.buildEvidence(ctx, emp.ID, today, req.Latitude, req.Longitude, req.Accuracy, func() (string, error) {
		return s.fileService.UploadAttendanceProof(ctx, emp.ID, today, req.File, req.FileHeader.Filename, "check_out")
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	regularHours := hoursBetween(*record.CheckInTime, now)

	record.CheckOutTime = &now
	record.CheckOut = evidence
	record.WorkingHours = regularHours + record.ManualOTHours
	record.Status = classifyCheckOut(regularHours, now, window, record.Status)

	if err := s.attendanceRepo.CompleteCheckOut(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.toResponse(ctx, *record), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.Filter) (attendance.ListAttendanceResponse, error) {
	emp, err := s.employeeRepo.Resolve(ctx, filter.EmployeeID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = emp.ID

	return s.list(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.Filter) (attendance.ListAttendanceResponse, error) {
	if filter.EmployeeID != "" {
		emp, err := s.employeeRepo.Resolve(ctx, filter.EmployeeID)
		if err != nil {
			return attendance.ListAttendanceResponse{}, err
		}
		filter.EmployeeID = emp.ID
	}

	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.Filter) (attendance.ListAttendanceResponse, error) {
	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	resp := attendance.ListAttendanceResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, rec := range records {
		resp.Attendances = append(resp.Attendances, s.toResponse(ctx, rec))
	}

	return resp, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02 15:04:05")
	return &formatted
}

func toEvidenceResponse(ev *attendance.Evidence) *attendance.EvidenceResponse {
	if ev == nil {
		return nil
	}
	return &attendance.EvidenceResponse{
		Latitude:  ev.Latitude,
		Longitude: ev.Longitude,
		Accuracy:  ev.Accuracy,
		Address:   ev.Address,
		PhotoURL:  ev.PhotoURL,
	}
}

func (s *AttendanceServiceImpl) toResponse(ctx context.Context, rec attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:            rec.ID,
		EmployeeID:    rec.EmployeeID,
		Date:          rec.Date.Format("2006-01-02"),
		Type:          string(rec.Type),
		CheckInTime:   timePtrToString(rec.CheckInTime),
		CheckOutTime:  timePtrToString(rec.CheckOutTime),
		CheckIn:       toEvidenceResponse(rec.CheckIn),
		CheckOut:      toEvidenceResponse(rec.CheckOut),
		Status:        string(rec.Status),
		IsLate:        rec.IsLate,
		LateMinutes:   rec.LateMinutes,
		WorkingHours:  rec.WorkingHours,
		OvertimeHours: rec.OvertimeHours,
		OTStatus:      string(rec.OTStatus),
		OTStartTime:   timePtrToString(rec.OTStartTime),
		OTEndTime:     timePtrToString(rec.OTEndTime),
		OTStart:       toEvidenceResponse(rec.OTStart),
		OTEnd:         toEvidenceResponse(rec.OTEnd),
		ManualOTHours: rec.ManualOTHours,
		AutoCorrected: rec.AutoCorrected,
		Reason:        rec.Reason,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.OTType != nil {
		t := string(*rec.OTType)
		resp.OTType = &t
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	return resp
}
