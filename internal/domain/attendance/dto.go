package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/stafftrack/wfm-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

func validateProofPhoto(errs validator.ValidationErrors, header *multipart.FileHeader) validator.ValidationErrors {
	if header == nil {
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "proof photo is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "invalid file type: only jpg, jpeg, png allowed",
		})
	}

	if header.Size > 10<<20 { // 10MB
		return append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "proof photo size must not exceed 10MB",
		})
	}

	return errs
}

func validateCoordinates(errs validator.ValidationErrors, latitude, longitude float64) validator.ValidationErrors {
	if !validator.IsValidLatitude(latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	return errs
}

type CheckInRequest struct {
	EmployeeID string                `json:"-"`
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	Accuracy   *float64              `json:"accuracy,omitempty"`
	Type       string                `json:"attendance_type"`
	Reason     *string               `json:"reason,omitempty"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateCoordinates(errs, r.Latitude, r.Longitude)
	errs = validateProofPhoto(errs, r.FileHeader)

	if !validator.IsInSlice(r.Type, []string{string(TypeOffice), string(TypeRemote), string(TypeFieldWork)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_type",
			Message: "attendance_type must be one of office, remote, field_work",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	EmployeeID string                `json:"-"`
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	Accuracy   *float64              `json:"accuracy,omitempty"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateCoordinates(errs, r.Latitude, r.Longitude)
	errs = validateProofPhoto(errs, r.FileHeader)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StartOvertimeRequest struct {
	EmployeeID string                `json:"-"`
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	Accuracy   *float64              `json:"accuracy,omitempty"`
	Reason     *string               `json:"reason,omitempty"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *StartOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateCoordinates(errs, r.Latitude, r.Longitude)
	errs = validateProofPhoto(errs, r.FileHeader)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EndOvertimeRequest struct {
	EmployeeID string                `json:"-"`
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	Accuracy   *float64              `json:"accuracy,omitempty"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *EndOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateCoordinates(errs, r.Latitude, r.Longitude)
	errs = validateProofPhoto(errs, r.FileHeader)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EvidenceResponse struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
	PhotoURL  string   `json:"photo_url"`
}

type AttendanceResponse struct {
	ID            string            `json:"id"`
	EmployeeID    string            `json:"employee_id"`
	EmployeeName  string            `json:"employee_name,omitempty"`
	Date          string            `json:"date"`
	Type          string            `json:"attendance_type"`
	CheckInTime   *string           `json:"check_in_time"`
	CheckOutTime  *string           `json:"check_out_time"`
	CheckIn       *EvidenceResponse `json:"check_in,omitempty"`
	CheckOut      *EvidenceResponse `json:"check_out,omitempty"`
	Status        string            `json:"status"`
	IsLate        bool              `json:"is_late"`
	LateMinutes   int               `json:"late_minutes"`
	WorkingHours  float64           `json:"working_hours"`
	OvertimeHours float64           `json:"overtime_hours"`
	OTStatus      string            `json:"ot_status"`
	OTType        *string           `json:"ot_type,omitempty"`
	OTStartTime   *string           `json:"ot_start_time,omitempty"`
	OTEndTime     *string           `json:"ot_end_time,omitempty"`
	OTStart       *EvidenceResponse `json:"ot_start,omitempty"`
	OTEnd         *EvidenceResponse `json:"ot_end,omitempty"`
	ManualOTHours float64           `json:"manual_ot_hours"`
	AutoCorrected bool              `json:"auto_corrected"`
	Reason        *string           `json:"reason,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty"`
}

type Filter struct {
	EmployeeID string
	From       *string
	To         *string
	Status     string
	Page       int
	Limit      int
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// PeriodSummary is what the payroll engine reads for one employee and month.
type PeriodSummary struct {
	EmployeeID    string
	PresentDays   int
	CreditedDates []string // yyyy-mm-dd of days with a credited status
	OvertimeHours float64
}
