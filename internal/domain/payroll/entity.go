package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type PerDayBase string

const (
	PerDayBasic    PerDayBase = "basic"
	PerDayBasicHRA PerDayBase = "basic_hra"
	PerDayGross    PerDayBase = "gross"
)

// SalaryStructure is the per-employee compensation configuration, versioned
// by effective dates. Exactly one structure is active for an employee on any
// given date.
type SalaryStructure struct {
	ID              string
	EmployeeID      string
	FixedBasic      decimal.Decimal
	FixedHRA        decimal.Decimal
	FixedConveyance decimal.Decimal

	CustomEarnings   map[string]decimal.Decimal
	CustomDeductions map[string]decimal.Decimal

	EPFApplicable bool
	ESIApplicable bool
	VPTAmount     decimal.Decimal

	PerDaySalaryBase PerDayBase

	// OvertimeRateMultiplier is vestigial: the company-wide settings value
	// is authoritative. Kept for historical records.
	OvertimeRateMultiplier *decimal.Decimal

	EffectiveFrom time.Time
	EffectiveTo   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PerDaySalary returns the day rate of the structure for a month with the
// given number of days, using the configured base.
func (s SalaryStructure) PerDaySalary(monthDays int) decimal.Decimal {
	base := s.FixedBasic
	switch s.PerDaySalaryBase {
	case PerDayBasicHRA:
		base = s.FixedBasic.Add(s.FixedHRA)
	case PerDayGross:
		base = s.FixedBasic.Add(s.FixedHRA).Add(s.FixedConveyance)
		for _, amount := range s.CustomEarnings {
			base = base.Add(amount)
		}
	}
	return base.Div(decimal.NewFromInt(int64(monthDays)))
}

// Settings are the company-wide statutory and overtime parameters. The
// overtime multiplier here supersedes any per-structure value.
type Settings struct {
	ID                     string
	EPFEmployeeRate        decimal.Decimal
	EPFCeilingAmount       decimal.Decimal
	ESIEmployeeRate        decimal.Decimal
	ESIThreshold           decimal.Decimal
	StandardDailyHours     int
	OvertimeRateMultiplier decimal.Decimal
	UpdatedAt              time.Time
}

type RecordStatus string

const (
	StatusDraft     RecordStatus = "draft"
	StatusProcessed RecordStatus = "processed"
	StatusApproved  RecordStatus = "approved"
	StatusPaid      RecordStatus = "paid"
)

// Record is the monthly payroll output, one per (employee, month, year).
// Written exclusively by the aggregation engine; status advances via
// administrative action afterwards.
type Record struct {
	ID         string
	EmployeeID string
	Month      int
	Year       int

	MonthDays     int
	PresentDays   float64
	PaidLeaveDays float64

	OvertimeHours float64
	OvertimePay   decimal.Decimal

	EarnedBasic      decimal.Decimal
	EarnedHRA        decimal.Decimal
	EarnedConveyance decimal.Decimal

	DynamicEarnings   map[string]decimal.Decimal
	DynamicDeductions map[string]decimal.Decimal

	EPFDeduction         decimal.Decimal
	ESIDeduction         decimal.Decimal
	VPTDeduction         decimal.Decimal
	TDSDeduction         decimal.Decimal
	UnpaidLeaveDeduction decimal.Decimal
	AdvanceDeduction     decimal.Decimal

	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	Status RecordStatus

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}
