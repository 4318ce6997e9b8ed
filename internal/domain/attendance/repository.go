package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. Guarded
// state transitions are enforced here: the conditional update methods commit
// only when their precondition still holds and report a conflict otherwise,
// so concurrent duplicate attempts never overwrite each other.
type AttendanceRepository interface {
	// Create inserts the day's record. A unique (employee_id, date)
	// constraint maps to ErrAlreadyCheckedIn.
	Create(ctx context.Context, record Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// AttachCheckIn adds check-in evidence to a record created by an
	// overtime session before any regular check-in happened. Conditional on
	// check_in_time IS NULL; zero rows affected surfaces ErrAlreadyCheckedIn.
	AttachCheckIn(ctx context.Context, record Attendance) error

	// CompleteCheckOut closes the record. The update is conditional on
	// check_out_time IS NULL AND NOT auto_corrected; zero rows affected
	// surfaces ErrAlreadyCheckedOut.
	CompleteCheckOut(ctx context.Context, record Attendance) error

	// BeginOvertime transitions ot_status to in_progress, conditional on the
	// session not already running; zero rows surfaces ErrOvertimeInProgress.
	BeginOvertime(ctx context.Context, record Attendance) error

	// FinishOvertime completes the running session, conditional on
	// ot_status = 'in_progress'; zero rows surfaces ErrOvertimeNotInProgress.
	FinishOvertime(ctx context.Context, record Attendance) error

	// GetOvertimeInProgress returns the employee's record with a running
	// session regardless of date, or nil when no session is open. A session
	// started before midnight must still be reachable the next day.
	GetOvertimeInProgress(ctx context.Context, employeeID string) (*Attendance, error)

	// ListOpen returns records with a check-in but no check-out that have not
	// been auto-corrected. Used by the auto-checkout sweep.
	ListOpen(ctx context.Context) ([]Attendance, error)

	// AutoClose closes a stale record on behalf of the sweep, conditional on
	// it still being open; idempotent across repeated sweeps.
	AutoClose(ctx context.Context, id string, checkOutTime time.Time, workingHours float64, status Status) error

	List(ctx context.Context, filter Filter) ([]Attendance, int64, error)

	// SummaryForPeriod aggregates credited days and completed overtime hours
	// for one employee over [from, to].
	SummaryForPeriod(ctx context.Context, employeeID string, from, to time.Time) (PeriodSummary, error)
}
