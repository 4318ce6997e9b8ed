package clock12

import (
	"fmt"
	"strings"
	"time"
)

// Department timings are stored as 12-hour clock strings ("09:00 AM").
// A missing or malformed timing must fail the operation, so parsing is
// strict: an explicit AM/PM marker is required and no defaulting happens.

// ClockTime is a time-of-day parsed from a 12-hour clock string.
type ClockTime struct {
	Hour   int // 0-23
	Minute int
}

var layouts = []string{"03:04 PM", "3:04 PM"}

// Parse parses a 12-hour clock string with an explicit AM/PM marker.
func Parse(s string) (ClockTime, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ClockTime{}, fmt.Errorf("clock string is empty")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasSuffix(upper, "AM") && !strings.HasSuffix(upper, "PM") {
		return ClockTime{}, fmt.Errorf("clock string %q has no AM/PM marker", s)
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, upper)
		if err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}

	return ClockTime{}, fmt.Errorf("invalid 12-hour clock string %q", s)
}

// At anchors the clock time onto the given date in that date's location.
func (c ClockTime) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

func (c ClockTime) String() string {
	marker := "AM"
	hour := c.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		marker = "PM"
	case hour > 12:
		hour -= 12
		marker = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", hour, c.Minute, marker)
}
