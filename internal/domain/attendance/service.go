package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance and manual
// overtime sessions.
type AttendanceService interface {
	// CheckIn opens today's record with lateness classification.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes today's record and computes working hours.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// StartOvertime opens a manual overtime session with type classification.
	StartOvertime(ctx context.Context, req StartOvertimeRequest) (AttendanceResponse, error)

	// EndOvertime completes the running session and folds the hours into the
	// day's record.
	EndOvertime(ctx context.Context, req EndOvertimeRequest) (AttendanceResponse, error)

	// GetMyAttendance lists records for the authenticated employee.
	GetMyAttendance(ctx context.Context, filter Filter) (ListAttendanceResponse, error)

	// ListAttendance lists records across employees (admin).
	ListAttendance(ctx context.Context, filter Filter) (ListAttendanceResponse, error)
}
