package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCasual     Type = "casual"
	TypeUnpaid     Type = "unpaid"
	TypePermission Type = "permission"
)

type Status string

const (
	StatusPendingTL    Status = "pending_tl"
	StatusPendingHR    Status = "pending_hr"
	StatusApproved     Status = "approved"
	StatusRejectedByTL Status = "rejected_by_tl"
	StatusRejectedByHR Status = "rejected_by_hr"
	StatusCancelled    Status = "cancelled"
)

// IsTerminal reports whether the status is immutable.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejectedByTL, StatusRejectedByHR, StatusCancelled:
		return true
	}
	return false
}

// ApprovalLevel identifies who is acting on a pending application.
type ApprovalLevel string

const (
	LevelTL ApprovalLevel = "tl"
	LevelHR ApprovalLevel = "hr"
)

// Application is one leave request moving through the two-level approval
// chain. CasualDays/UnpaidDays record the partial-balance conversion split:
// days beyond the casual balance at application time are re-typed unpaid.
type Application struct {
	ID         string
	EmployeeID string
	Type       Type
	StartDate  time.Time
	EndDate    time.Time
	TotalDays  float64
	CasualDays float64
	UnpaidDays float64

	// PermissionHours applies to permission-type requests only.
	PermissionHours float64

	Status          Status
	Reason          *string
	RejectionReason *string

	// AttachmentURL is the storage path of an optional supporting document
	// uploaded with the application.
	AttachmentURL *string

	ApprovedByTL   *string
	ApprovedByTLAt *time.Time
	ApprovedByHR   *string
	ApprovedByHRAt *time.Time

	AffectsPayroll  bool
	DeductionAmount decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// Balance is the employee's accrued leave position.
type Balance struct {
	EmployeeID      string
	CasualDays      float64
	PermissionHours float64
	UpdatedAt       time.Time
}

// AccrualEntry records one periodic credit, keyed uniquely per
// (employee, year, month) so re-running the accrual job is idempotent.
type AccrualEntry struct {
	ID              string
	EmployeeID      string
	Year            int
	Month           int
	CasualDays      float64
	PermissionHours float64
	CreatedAt       time.Time
}
