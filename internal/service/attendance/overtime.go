package attendance

import (
	"context"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
)

// StartOvertime implements attendance.AttendanceService. The session is
// independent of the regular check-in: holiday or weekend work opens the
// day's record on its own.
func (s *AttendanceServiceImpl) StartOvertime(ctx context.Context, req attendance.StartOvertimeRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	open, err := s.attendanceRepo.GetOvertimeInProgress(ctx, emp.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if open != nil {
		return attendance.AttendanceResponse{}, attendance.ErrOvertimeInProgress
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

	isHoliday, err := s.timingProvider.IsHoliday(ctx, dept.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	otType := classifyOvertimeType(now, dept, isHoliday, window)

	evidence, err := s.buildEvidence(ctx, emp.ID, today, req.Latitude, req.Longitude, req.Accuracy, func() (string, error) {
		return s.fileService.UploadOvertimeProof(ctx, emp.ID, today, req.File, req.FileHeader.Filename, "ot_start")
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if existing != nil {
		existing.OTStatus = attendance.OTInProgress
		existing.OTType = &otType
		existing.OTStartTime = &now
		existing.OTStart = evidence
		if err := s.attendanceRepo.BeginOvertime(ctx, *existing); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		saved, err := s.attendanceRepo.GetByID(ctx, existing.ID)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		return s.toResponse(ctx, saved), nil
	}

	record := attendance.Attendance{
		EmployeeID:  emp.ID,
		Date:        today,
		Type:        attendance.TypeOffice,
		Status:      attendance.StatusAbsent,
		OTStatus:    attendance.OTInProgress,
		OTType:      &otType,
		OTStartTime: &now,
		OTStart:     evidence,
		Reason:      req.Reason,
	}

	saved, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.toResponse(ctx, saved), nil
}

// EndOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndOvertime(ctx context.Context, req attendance.EndOvertimeRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()

	// The open session is looked up by status, not by today's date: a shift
	// started before midnight ends against the record it opened.
	record, err := s.attendanceRepo.GetOvertimeInProgress(ctx, emp.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil || record.OTStartTime == nil {
		return attendance.AttendanceResponse{}, attendance.ErrOvertimeNotInProgress
	}

	evidence, err := s.buildEvidence(ctx, emp.ID, record.Date, req.Latitude, req.Longitude, req.Accuracy, func() (string, error) {
		return s.fileService.UploadOvertimeProof(ctx, emp.ID, record.Date, req.File, req.FileHeader.Filename, "ot_end")
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	otHours := hoursBetween(*record.OTStartTime, now)

	regularHours := 0.0
	if record.CheckInTime != nil && record.CheckOutTime != nil {
		regularHours = hoursBetween(*record.CheckInTime, *record.CheckOutTime)
	}

	record.OTStatus = attendance.OTCompleted
	record.OTEndTime = &now
	record.OTEnd = evidence
	record.ManualOTHours = otHours
	record.OvertimeHours = otHours
	record.WorkingHours = regularHours + otHours

	if err := s.attendanceRepo.FinishOvertime(ctx, *record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.toResponse(ctx, *record), nil
}
