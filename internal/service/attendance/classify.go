package attendance

import (
	"math"
	"time"

	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/clock12"
)

// dayWindow is the department's working window resolved onto a concrete date.
type dayWindow struct {
	CheckInAt     time.Time
	CheckOutAt    time.Time
	LateThreshold time.Duration
	WorkingHours  float64
}

func resolveWindow(timing department.Timing, date time.Time) (dayWindow, error) {
	checkIn, err := clock12.Parse(timing.CheckInTime)
	if err != nil {
		return dayWindow{}, err
	}
	checkOut, err := clock12.Parse(timing.CheckOutTime)
	if err != nil {
		return dayWindow{}, err
	}

	return dayWindow{
		CheckInAt:     checkIn.At(date),
		CheckOutAt:    checkOut.At(date),
		LateThreshold: time.Duration(timing.LateThresholdMinutes) * time.Minute,
		WorkingHours:  timing.WorkingHours,
	}, nil
}

// classifyCheckIn validates the check-in moment against the working window
// and derives status and lateness.
func classifyCheckIn(now time.Time, w dayWindow) (attendance.Status, bool, int, error) {
	if now.Before(w.CheckInAt) {
		return "", false, 0, attendance.ErrBeforeCheckInWindow
	}
	if now.After(w.CheckOutAt) {
		return "", false, 0, attendance.ErrAfterCheckOutWindow
	}

	if now.After(w.CheckInAt.Add(w.LateThreshold)) {
		lateMinutes := int(now.Sub(w.CheckInAt).Minutes())
		return attendance.StatusLate, true, lateMinutes, nil
	}
	return attendance.StatusPresent, false, 0, nil
}

// classifyCheckOut re-grades the day once working hours are known. Lateness
// survives unless a stronger condition applies.
func classifyCheckOut(workedHours float64, now time.Time, w dayWindow, current attendance.Status) attendance.Status {
	if workedHours < w.WorkingHours/2 {
		return attendance.StatusHalfDay
	}
	if now.Before(w.CheckOutAt) {
		return attendance.StatusEarlyCheckout
	}
	return current
}

// classifyOvertimeType orders the calendar checks by specificity: a holiday
// outranks a rest day, which outranks the time-of-day split.
func classifyOvertimeType(now time.Time, dept department.Department, isHoliday bool, w dayWindow) attendance.OTType {
	switch {
	case isHoliday:
		return attendance.OTHoliday
	case dept.IsRestDay(now):
		return attendance.OTWeekend
	case now.Before(w.CheckInAt):
		return attendance.OTEarlyArrival
	default:
		return attendance.OTLateDeparture
	}
}

// hoursBetween returns the duration in hours rounded to two decimals.
func hoursBetween(from, to time.Time) float64 {
	return math.Round(to.Sub(from).Hours()*100) / 100
}
