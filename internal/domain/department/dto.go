package department

import (
	"github.com/stafftrack/wfm-backend-go/internal/pkg/clock12"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/validator"
)

type UpdateTimingRequest struct {
	DepartmentID             string  `json:"-"`
	CheckInTime              string  `json:"check_in_time"`
	CheckOutTime             string  `json:"check_out_time"`
	LateThresholdMinutes     int     `json:"late_threshold_minutes"`
	OvertimeThresholdMinutes int     `json:"overtime_threshold_minutes"`
	WorkingHours             float64 `json:"working_hours"`
}

func (r *UpdateTimingRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id is required",
		})
	}

	if _, err := clock12.Parse(r.CheckInTime); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_time",
			Message: "check_in_time must be a 12-hour clock string with AM/PM",
		})
	}

	if _, err := clock12.Parse(r.CheckOutTime); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_time",
			Message: "check_out_time must be a 12-hour clock string with AM/PM",
		})
	}

	if r.LateThresholdMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_threshold_minutes",
			Message: "late_threshold_minutes must not be negative",
		})
	}

	if r.WorkingHours <= 0 || r.WorkingHours > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "working_hours",
			Message: "working_hours must be between 0 and 24",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimingResponse struct {
	DepartmentID             string  `json:"department_id"`
	CheckInTime              string  `json:"check_in_time"`
	CheckOutTime             string  `json:"check_out_time"`
	LateThresholdMinutes     int     `json:"late_threshold_minutes"`
	OvertimeThresholdMinutes int     `json:"overtime_threshold_minutes"`
	WorkingHours             float64 `json:"working_hours"`
}
