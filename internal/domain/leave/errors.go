package leave

import "errors"

var (
	ErrApplicationNotFound    = errors.New("leave application not found")
	ErrOverlappingLeave       = errors.New("leave dates overlap an existing application")
	ErrLeaveOnRestDay         = errors.New("leave dates fall on a rest day or holiday")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrAlreadyProcessed       = errors.New("leave application has already been processed")
	ErrWrongApprovalLevel     = errors.New("application is not pending at this approval level")
	ErrCancelAfterDecision    = errors.New("only pending applications can be cancelled")
	ErrInsufficientPermission = errors.New("insufficient permission-hour balance")
)
