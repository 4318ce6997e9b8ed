package department

import (
	"context"
	"time"
)

type DepartmentRepository interface {
	GetByID(ctx context.Context, id string) (Department, error)
	List(ctx context.Context) ([]Department, error)
	UpdateTiming(ctx context.Context, departmentID string, timing Timing) error

	// GetHolidays returns holidays overlapping [from, to] that apply to the
	// department (department-specific plus company-wide).
	GetHolidays(ctx context.Context, departmentID string, from, to time.Time) ([]Holiday, error)
}

// TimingProvider hands out parsed, cached department configuration. The
// cache is explicit: UpdateTiming callers invalidate the department entry.
type TimingProvider interface {
	DepartmentFor(ctx context.Context, departmentID string) (Department, error)
	IsHoliday(ctx context.Context, departmentID string, date time.Time) (bool, error)
	Invalidate(departmentID string)
}
