package attendance

import (
	"time"
)

type Type string

const (
	TypeOffice    Type = "office"
	TypeRemote    Type = "remote"
	TypeFieldWork Type = "field_work"
)

type Status string

const (
	StatusPresent       Status = "present"
	StatusLate          Status = "late"
	StatusHalfDay       Status = "half_day"
	StatusEarlyCheckout Status = "early_checkout"
	StatusAbsent        Status = "absent"
)

type OTStatus string

const (
	OTNotStarted OTStatus = "not_started"
	OTInProgress OTStatus = "in_progress"
	OTCompleted  OTStatus = "completed"
)

type OTType string

const (
	OTEarlyArrival  OTType = "early_arrival"
	OTLateDeparture OTType = "late_departure"
	OTWeekend       OTType = "weekend"
	OTHoliday       OTType = "holiday"
)

// Evidence is the location+photo proof captured for a check-in, check-out or
// overtime boundary. Address is filled by reverse geocoding when available;
// otherwise callers keep the raw coordinates.
type Evidence struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Address   *string
	PhotoURL  string
}

// Attendance is the per-(employee, date) record. The overtime session is
// embedded: one active session per employee per day, independent of regular
// check-in completeness.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Type       Type

	CheckInTime  *time.Time
	CheckIn      *Evidence
	CheckOutTime *time.Time
	CheckOut     *Evidence

	Status       Status
	IsLate       bool
	LateMinutes  int
	WorkingHours float64

	OvertimeHours float64
	OTStatus      OTStatus
	OTType        *OTType
	OTStartTime   *time.Time
	OTStart       *Evidence
	OTEndTime     *time.Time
	OTEnd         *Evidence
	ManualOTHours float64

	// AutoCorrected marks records closed by the background sweep. Once set,
	// employee-initiated check-out is refused.
	AutoCorrected bool

	Reason    *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}
