package leave

import (
	"mime/multipart"

	"github.com/stafftrack/wfm-backend-go/internal/pkg/validator"
)

type ApplyRequest struct {
	EmployeeID      string  `json:"-"`
	Type            string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	PermissionHours float64 `json:"permission_hours,omitempty"`
	Reason          *string `json:"reason,omitempty"`

	// Optional supporting document, present only on multipart submissions.
	Attachment       multipart.File        `json:"-"`
	AttachmentHeader *multipart.FileHeader `json:"-"`
}

func (r *ApplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, []string{string(TypeCasual), string(TypeUnpaid), string(TypePermission)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of casual, unpaid, permission",
		})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be yyyy-mm-dd",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be yyyy-mm-dd",
		})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.Type == string(TypePermission) && r.PermissionHours <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "permission_hours",
			Message: "permission_hours must be positive for permission leave",
		})
	}

	if r.AttachmentHeader != nil && r.AttachmentHeader.Size > 10<<20 { // 10MB
		errs = append(errs, validator.ValidationError{
			Field:   "attachment",
			Message: "attachment size must not exceed 10MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecisionRequest struct {
	ApplicationID string `json:"-"`
	Level         string `json:"level"`
	ApproverID    string `json:"-"`
	Reason        string `json:"reason,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Level, []string{string(LevelTL), string(LevelHR)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be tl or hr",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApplicationResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	Type            string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       float64 `json:"total_days"`
	CasualDays      float64 `json:"casual_days"`
	UnpaidDays      float64 `json:"unpaid_days"`
	PermissionHours float64 `json:"permission_hours,omitempty"`
	Status          string  `json:"status"`
	Reason          *string `json:"reason,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	AttachmentURL   *string `json:"attachment_url,omitempty"`
	AffectsPayroll  bool    `json:"affects_payroll"`
	DeductionAmount string  `json:"deduction_amount"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

type BalanceResponse struct {
	EmployeeID      string  `json:"employee_id"`
	CasualDays      float64 `json:"casual_days"`
	PermissionHours float64 `json:"permission_hours"`
}

type Filter struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int
}

type ListApplicationResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Applications []ApplicationResponse `json:"applications"`
}
