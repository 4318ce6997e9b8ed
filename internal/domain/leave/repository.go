package leave

import (
	"context"
	"time"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)

	// UpdateStatus advances the approval state machine. The update is
	// conditional on the current status matching expected; zero rows
	// affected surfaces ErrAlreadyProcessed.
	UpdateStatus(ctx context.Context, app Application, expected Status) error

	// HasOverlapping reports whether any non-cancelled, non-rejected
	// application of the employee overlaps [start, end].
	HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error)

	List(ctx context.Context, filter Filter) ([]Application, int64, error)

	// ApprovedInPeriod returns approved applications whose date range
	// intersects [from, to]. The payroll engine reads these.
	ApprovedInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Application, error)
}

type BalanceRepository interface {
	GetByEmployee(ctx context.Context, employeeID string) (Balance, error)

	// AdjustBalance applies a delta to the employee's balance atomically.
	AdjustBalance(ctx context.Context, employeeID string, casualDays, permissionHours float64) error

	// RecordAccrual inserts the periodic credit entry; a unique
	// (employee, year, month) constraint makes re-runs no-ops and returns
	// false when the entry already existed.
	RecordAccrual(ctx context.Context, entry AccrualEntry) (bool, error)
}

// LeaveService defines the leave ledger operations.
type LeaveService interface {
	Apply(ctx context.Context, req ApplyRequest) (ApplicationResponse, error)
	Approve(ctx context.Context, req DecisionRequest) (ApplicationResponse, error)
	Reject(ctx context.Context, req DecisionRequest) (ApplicationResponse, error)
	Cancel(ctx context.Context, applicationID, employeeID string) (ApplicationResponse, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	ListMy(ctx context.Context, filter Filter) (ListApplicationResponse, error)
	List(ctx context.Context, filter Filter) (ListApplicationResponse, error)
}
