package employee

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee is the directory record this system consumes. The directory
// itself is maintained elsewhere; attendance, leave and payroll key
// everything off Employee.ID.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	DepartmentID string
	Status       Status
	JoinedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
