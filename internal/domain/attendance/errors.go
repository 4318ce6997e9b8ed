package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn      = errors.New("attendance record already exists for today")
	ErrNotCheckedIn          = errors.New("no open attendance record for today")
	ErrAlreadyCheckedOut     = errors.New("attendance has already been checked out")
	ErrRecordLocked          = errors.New("attendance was auto-corrected and is locked for review")
	ErrBeforeCheckInWindow   = errors.New("too early to check in")
	ErrAfterCheckOutWindow   = errors.New("too late to check in for today")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must be after check-in time")

	// Overtime session errors
	ErrOvertimeInProgress    = errors.New("an overtime session is already in progress")
	ErrOvertimeNotInProgress = errors.New("no overtime session in progress")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
