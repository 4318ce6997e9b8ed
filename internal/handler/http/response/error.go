package response

import (
	"errors"
	"net/http"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee directory errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeNotResolved):
		NotFound(w, "Employee identity could not be resolved")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")

	// Department errors
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrInvalidTiming):
		BadRequest(w, "Department timing is missing or malformed", nil)

	// Attendance errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "No open attendance record for today", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrRecordLocked):
		Conflict(w, "Attendance was auto-corrected and is locked for review")
	case errors.Is(err, attendance.ErrBeforeCheckInWindow):
		BadRequest(w, "Too early to check in", nil)
	case errors.Is(err, attendance.ErrAfterCheckOutWindow):
		BadRequest(w, "Too late to check in for today", nil)
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, "Check-out time must be after check-in time", nil)
	case errors.Is(err, attendance.ErrOvertimeInProgress):
		Conflict(w, "An overtime session is already in progress")
	case errors.Is(err, attendance.ErrOvertimeNotInProgress):
		BadRequest(w, "No overtime session in progress", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave errors
	case errors.Is(err, leave.ErrApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "Leave dates overlap an existing application")
	case errors.Is(err, leave.ErrLeaveOnRestDay):
		BadRequest(w, "Leave dates fall on a rest day or holiday", nil)
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		Conflict(w, "Leave application has already been processed")
	case errors.Is(err, leave.ErrWrongApprovalLevel):
		Conflict(w, "Application is not pending at this approval level")
	case errors.Is(err, leave.ErrCancelAfterDecision):
		Conflict(w, "Only pending applications can be cancelled")
	case errors.Is(err, leave.ErrInsufficientPermission):
		BadRequest(w, "Insufficient permission-hour balance", nil)

	// Payroll errors
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrStructureNotFound):
		NotFound(w, "No active salary structure for the period")
	case errors.Is(err, payroll.ErrInvalidStatusChange):
		Conflict(w, "Invalid payroll status transition")
	case errors.Is(err, payroll.ErrRecordNotEditable):
		Conflict(w, "Payroll record can no longer be edited")
	case errors.Is(err, payroll.ErrStructureOverlap):
		Conflict(w, "Salary structure dates overlap an existing structure")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
