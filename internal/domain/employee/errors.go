package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEmployeeNotResolved means an identifier could not be mapped to
	// exactly one directory record. Callers must fail loudly rather than
	// retry the lookup under a different identifier.
	ErrEmployeeNotResolved = errors.New("employee identity could not be resolved to a single record")

	ErrEmployeeInactive = errors.New("employee is not active")
)
