package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/validator"
)

type ProcessRequest struct {
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	DepartmentID string `json:"department_id,omitempty"`
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 2000 || r.Year > 2200 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year is out of range",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeeError reports an isolated per-employee failure during a bulk run.
type EmployeeError struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type ProcessResponse struct {
	Month     int              `json:"month"`
	Year      int              `json:"year"`
	Processed int              `json:"processed"`
	Records   []RecordResponse `json:"records"`
	Errors    []EmployeeError  `json:"errors,omitempty"`
}

type RecordResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`

	MonthDays     int     `json:"month_days"`
	PresentDays   float64 `json:"present_days"`
	PaidLeaveDays float64 `json:"paid_leave_days"`

	OvertimeHours float64         `json:"overtime_hours"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`

	EarnedBasic      decimal.Decimal `json:"earned_basic"`
	EarnedHRA        decimal.Decimal `json:"earned_hra"`
	EarnedConveyance decimal.Decimal `json:"earned_conveyance"`

	DynamicEarnings   map[string]decimal.Decimal `json:"dynamic_earnings,omitempty"`
	DynamicDeductions map[string]decimal.Decimal `json:"dynamic_deductions,omitempty"`

	EPFDeduction         decimal.Decimal `json:"epf_deduction"`
	ESIDeduction         decimal.Decimal `json:"esi_deduction"`
	VPTDeduction         decimal.Decimal `json:"vpt_deduction"`
	TDSDeduction         decimal.Decimal `json:"tds_deduction"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	AdvanceDeduction     decimal.Decimal `json:"advance_deduction"`

	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	Status string `json:"status"`
}

// UpdateRecordRequest carries manual administrative corrections. Only
// provided fields change; totals are recomputed from the stored components.
type UpdateRecordRequest struct {
	ID                string                     `json:"-"`
	OvertimePay       *decimal.Decimal           `json:"overtime_pay,omitempty"`
	EarnedBasic       *decimal.Decimal           `json:"earned_basic,omitempty"`
	EarnedHRA         *decimal.Decimal           `json:"earned_hra,omitempty"`
	EarnedConveyance  *decimal.Decimal           `json:"earned_conveyance,omitempty"`
	DynamicEarnings   map[string]decimal.Decimal `json:"dynamic_earnings,omitempty"`
	DynamicDeductions map[string]decimal.Decimal `json:"dynamic_deductions,omitempty"`
	TDSDeduction      *decimal.Decimal           `json:"tds_deduction,omitempty"`
}

type RecordFilter struct {
	EmployeeID string
	Month      int
	Year       int
	Status     string
	Page       int
	Limit      int
}

type ListRecordResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}

type SettingsResponse struct {
	EPFEmployeeRate        decimal.Decimal `json:"epf_employee_rate"`
	EPFCeilingAmount       decimal.Decimal `json:"epf_ceiling_amount"`
	ESIEmployeeRate        decimal.Decimal `json:"esi_employee_rate"`
	ESIThreshold           decimal.Decimal `json:"esi_threshold"`
	StandardDailyHours     int             `json:"standard_daily_hours"`
	OvertimeRateMultiplier decimal.Decimal `json:"overtime_rate_multiplier"`
}

type UpdateSettingsRequest struct {
	EPFEmployeeRate        *decimal.Decimal `json:"epf_employee_rate,omitempty"`
	EPFCeilingAmount       *decimal.Decimal `json:"epf_ceiling_amount,omitempty"`
	ESIEmployeeRate        *decimal.Decimal `json:"esi_employee_rate,omitempty"`
	ESIThreshold           *decimal.Decimal `json:"esi_threshold,omitempty"`
	StandardDailyHours     *int             `json:"standard_daily_hours,omitempty"`
	OvertimeRateMultiplier *decimal.Decimal `json:"overtime_rate_multiplier,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StandardDailyHours != nil && (*r.StandardDailyHours <= 0 || *r.StandardDailyHours > 24) {
		errs = append(errs, validator.ValidationError{
			Field:   "standard_daily_hours",
			Message: "standard_daily_hours must be between 1 and 24",
		})
	}
	if r.EPFEmployeeRate != nil && r.EPFEmployeeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "epf_employee_rate",
			Message: "epf_employee_rate must not be negative",
		})
	}
	if r.OvertimeRateMultiplier != nil && r.OvertimeRateMultiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_rate_multiplier",
			Message: "overtime_rate_multiplier must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpsertStructureRequest struct {
	EmployeeID       string                     `json:"-"`
	FixedBasic       decimal.Decimal            `json:"fixed_basic"`
	FixedHRA         decimal.Decimal            `json:"fixed_hra"`
	FixedConveyance  decimal.Decimal            `json:"fixed_conveyance"`
	CustomEarnings   map[string]decimal.Decimal `json:"custom_earnings,omitempty"`
	CustomDeductions map[string]decimal.Decimal `json:"custom_deductions,omitempty"`
	EPFApplicable    bool                       `json:"epf_applicable"`
	ESIApplicable    bool                       `json:"esi_applicable"`
	VPTAmount        decimal.Decimal            `json:"vpt_amount"`
	PerDaySalaryBase string                     `json:"per_day_salary_base"`
	EffectiveFrom    string                     `json:"effective_from"`
}

func (r *UpsertStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FixedBasic.IsNegative() || r.FixedHRA.IsNegative() || r.FixedConveyance.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "fixed_basic",
			Message: "fixed salary components must not be negative",
		})
	}
	if !validator.IsInSlice(r.PerDaySalaryBase, []string{string(PerDayBasic), string(PerDayBasicHRA), string(PerDayGross)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "per_day_salary_base",
			Message: "per_day_salary_base must be one of basic, basic_hra, gross",
		})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "effective_from",
			Message: "effective_from must be yyyy-mm-dd",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
