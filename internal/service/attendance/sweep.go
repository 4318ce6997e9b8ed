package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
)

// Sweep closes attendance records whose check-out never happened. A record
// is swept once the current time passes the department's check-out time plus
// the grace period; the computed cutoff becomes the check-out time and the
// record is flagged auto-corrected for administrative review. Conditional
// updates in the repository keep repeated sweeps idempotent.
func (s *AttendanceServiceImpl) Sweep(ctx context.Context, grace time.Duration) error {
	open, err := s.attendanceRepo.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open attendance records: %w", err)
	}

	now := s.now().UTC()
	var swept, failed int

	for _, rec := range open {
		emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID)
		if err != nil {
			failed++
			s.logger.Warn("sweep skipped record: employee lookup failed",
				slog.String("attendance_id", rec.ID),
				slog.Any("error", err),
			)
			continue
		}

		dept, err := s.timingProvider.DepartmentFor(ctx, emp.DepartmentID)
		if err != nil {
			failed++
			s.logger.Warn("sweep skipped record: department timing unavailable",
				slog.String("attendance_id", rec.ID),
				slog.Any("error", err),
			)
			continue
		}

		window, err := resolveWindow(dept.Timing, rec.Date)
		if err != nil {
			failed++
			s.logger.Warn("sweep skipped record: malformed department timing",
				slog.String("attendance_id", rec.ID),
				slog.Any("error", err),
			)
			continue
		}

		cutoff := window.CheckOutAt.Add(grace)
		if now.Before(cutoff) {
			continue
		}

		workingHours := 0.0
		if rec.CheckInTime != nil && cutoff.After(*rec.CheckInTime) {
			workingHours = hoursBetween(*rec.CheckInTime, cutoff) + rec.ManualOTHours
		}

		status := classifyCheckOut(workingHours-rec.ManualOTHours, cutoff, window, rec.Status)

		if err := s.attendanceRepo.AutoClose(ctx, rec.ID, cutoff, workingHours, status); err != nil {
			failed++
			s.logger.Warn("sweep failed to close record",
				slog.String("attendance_id", rec.ID),
				slog.Any("error", err),
			)
			continue
		}
		swept++
	}

	if swept > 0 || failed > 0 {
		s.logger.Info("auto-checkout sweep finished",
			slog.Int("open", len(open)),
			slog.Int("swept", swept),
			slog.Int("failed", failed),
		)
	}

	if failed > 0 {
		return fmt.Errorf("auto-checkout sweep failed for %d of %d records", failed, len(open))
	}
	return nil
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
