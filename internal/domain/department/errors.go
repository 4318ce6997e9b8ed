package department

import "errors"

var (
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrInvalidTiming covers missing timing configuration and clock strings
	// that are not valid 12-hour values. Operations depending on timing fail
	// with this error instead of assuming defaults.
	ErrInvalidTiming = errors.New("department timing is missing or malformed")
)
