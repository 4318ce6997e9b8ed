package employee

import "context"

// EmployeeRepository defines directory lookups. Resolve is the single
// canonical identity-resolution step: every other component queries by the
// Employee.ID it returns and never falls back to a second identifier.
type EmployeeRepository interface {
	// Resolve maps an employee ID or employee code to the directory record.
	// Returns ErrEmployeeNotResolved when no record or more than one record
	// matches.
	Resolve(ctx context.Context, identifier string) (Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive returns active employees, optionally filtered by department.
	ListActive(ctx context.Context, departmentID string) ([]Employee, error)
}
