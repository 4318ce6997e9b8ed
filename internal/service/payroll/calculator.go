package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
)

// ComputeInput carries everything one employee-month calculation needs. All
// collaborator reads (attendance summary, leave ledger, advances) happen
// before Compute so the calculation itself is pure and reproducible: the same
// input always yields an identical record.
type ComputeInput struct {
	EmployeeID string
	Month      int
	Year       int
	MonthDays  int

	PresentDays   float64
	PaidLeaveDays float64
	OvertimeHours float64

	Structure payroll.SalaryStructure
	Settings  payroll.Settings

	UnpaidLeaveDeduction decimal.Decimal
	AdvanceDeduction     decimal.Decimal
}

// prorate scales a fixed monthly amount by credited days. Full-month
// attendance returns the fixed amount unchanged so rounding can never shave
// a full salary.
func prorate(fixed decimal.Decimal, monthDays int, creditedDays decimal.Decimal) decimal.Decimal {
	days := decimal.NewFromInt(int64(monthDays))
	if creditedDays.GreaterThanOrEqual(days) {
		return fixed
	}
	return fixed.Div(days).Mul(creditedDays).Round(2)
}

// Compute runs the monthly aggregation sequence for one employee: credited
// days, pro-ration, overtime pay, statutory deductions, and totals. It is the
// single calculation path; the bulk run, single re-runs, and administrative
// recomputation all go through here.
func Compute(in ComputeInput) payroll.Record {
	s := in.Structure
	set := in.Settings

	credited := decimal.NewFromFloat(in.PresentDays).Add(decimal.NewFromFloat(in.PaidLeaveDays))
	monthDays := decimal.NewFromInt(int64(in.MonthDays))
	if credited.GreaterThan(monthDays) {
		credited = monthDays
	}

	earnedBasic := prorate(s.FixedBasic, in.MonthDays, credited)
	earnedHRA := prorate(s.FixedHRA, in.MonthDays, credited)
	earnedConveyance := prorate(s.FixedConveyance, in.MonthDays, credited)

	dynamicEarnings := make(map[string]decimal.Decimal, len(s.CustomEarnings))
	for name, amount := range s.CustomEarnings {
		dynamicEarnings[name] = prorate(amount, in.MonthDays, credited)
	}
	dynamicDeductions := make(map[string]decimal.Decimal, len(s.CustomDeductions))
	for name, amount := range s.CustomDeductions {
		dynamicDeductions[name] = prorate(amount, in.MonthDays, credited)
	}

	// Overtime pay from the fixed (not pro-rated) components. The company-wide
	// multiplier is authoritative.
	overtimePay := decimal.Zero
	if in.OvertimeHours > 0 && set.StandardDailyHours > 0 {
		standardHours := monthDays.Mul(decimal.NewFromInt(int64(set.StandardDailyHours)))
		hourlyRate := s.FixedBasic.Add(s.FixedHRA).Add(s.FixedConveyance).Div(standardHours)
		overtimePay = decimal.NewFromFloat(in.OvertimeHours).
			Mul(hourlyRate).
			Mul(set.OvertimeRateMultiplier).
			Round(2)
	}

	totalEarnings := earnedBasic.Add(earnedHRA).Add(earnedConveyance).Add(overtimePay)
	for _, amount := range dynamicEarnings {
		totalEarnings = totalEarnings.Add(amount)
	}

	epf := decimal.Zero
	if s.EPFApplicable {
		epf = earnedBasic.Mul(set.EPFEmployeeRate).Round(2)
		if epf.GreaterThan(set.EPFCeilingAmount) {
			epf = set.EPFCeilingAmount
		}
	}

	// ESI eligibility is a hard cliff at the threshold.
	esi := decimal.Zero
	if s.ESIApplicable && totalEarnings.LessThanOrEqual(set.ESIThreshold) {
		esi = totalEarnings.Mul(set.ESIEmployeeRate).Round(2)
	}

	// TDS is an extension point: carried through the record but never
	// computed here.
	tds := decimal.Zero

	totalDeductions := epf.Add(esi).Add(s.VPTAmount).Add(tds).
		Add(in.UnpaidLeaveDeduction).Add(in.AdvanceDeduction)
	for _, amount := range dynamicDeductions {
		totalDeductions = totalDeductions.Add(amount)
	}

	return payroll.Record{
		EmployeeID: in.EmployeeID,
		Month:      in.Month,
		Year:       in.Year,

		MonthDays:     in.MonthDays,
		PresentDays:   in.PresentDays,
		PaidLeaveDays: in.PaidLeaveDays,

		OvertimeHours: in.OvertimeHours,
		OvertimePay:   overtimePay,

		EarnedBasic:      earnedBasic,
		EarnedHRA:        earnedHRA,
		EarnedConveyance: earnedConveyance,

		DynamicEarnings:   dynamicEarnings,
		DynamicDeductions: dynamicDeductions,

		EPFDeduction:         epf,
		ESIDeduction:         esi,
		VPTDeduction:         s.VPTAmount,
		TDSDeduction:         tds,
		UnpaidLeaveDeduction: in.UnpaidLeaveDeduction,
		AdvanceDeduction:     in.AdvanceDeduction,

		TotalEarnings:   totalEarnings,
		TotalDeductions: totalDeductions,
		NetSalary:       totalEarnings.Sub(totalDeductions),

		Status: payroll.StatusProcessed,
	}
}
