package department

import "time"

// Timing is the working-hours configuration for a department. Clock strings
// are 12-hour with an explicit AM/PM marker ("09:00 AM"); parsing them is
// strict and a malformed value blocks the dependent operation.
type Timing struct {
	CheckInTime              string
	CheckOutTime             string
	LateThresholdMinutes     int
	OvertimeThresholdMinutes int
	WorkingHours             float64
}

type Department struct {
	ID        string
	Name      string
	Timing    Timing
	RestDays  []time.Weekday
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Holiday is a company holiday. DepartmentID empty means company-wide.
type Holiday struct {
	ID           string
	Name         string
	Date         time.Time
	DepartmentID string
}

// IsRestDay reports whether the given date falls on one of the department's
// configured rest days.
func (d Department) IsRestDay(date time.Time) bool {
	for _, wd := range d.RestDays {
		if date.Weekday() == wd {
			return true
		}
	}
	return false
}
