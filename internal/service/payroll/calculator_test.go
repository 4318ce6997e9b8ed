package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSettings() payroll.Settings {
	return payroll.Settings{
		EPFEmployeeRate:        dec("0.12"),
		EPFCeilingAmount:       dec("1800"),
		ESIEmployeeRate:        dec("0.0075"),
		ESIThreshold:           dec("21000"),
		StandardDailyHours:     8,
		OvertimeRateMultiplier: dec("1.5"),
	}
}

func testStructure() payroll.SalaryStructure {
	return payroll.SalaryStructure{
		EmployeeID:      "emp-1",
		FixedBasic:      dec("18000"),
		FixedHRA:        dec("6000"),
		FixedConveyance: dec("1200"),
		EPFApplicable:   true,
		ESIApplicable:   false,
		VPTAmount:       dec("200"),
	}
}

func TestComputeFullMonthPaysFixedAmountsExactly(t *testing.T) {
	in := ComputeInput{
		EmployeeID:  "emp-1",
		Month:       7,
		Year:        2026,
		MonthDays:   31,
		PresentDays: 31,
		Structure:   testStructure(),
		Settings:    testSettings(),
	}

	rec := Compute(in)

	// 31 is not a clean divisor, so any divide-then-multiply path would
	// shave paise off. Full attendance must reproduce the fixed amounts.
	assert.True(t, rec.EarnedBasic.Equal(dec("18000")), "basic = %s", rec.EarnedBasic)
	assert.True(t, rec.EarnedHRA.Equal(dec("6000")), "hra = %s", rec.EarnedHRA)
	assert.True(t, rec.EarnedConveyance.Equal(dec("1200")), "conveyance = %s", rec.EarnedConveyance)
	assert.Equal(t, payroll.StatusProcessed, rec.Status)
}

func TestComputeProratesByCreditedDays(t *testing.T) {
	s := testStructure()
	s.CustomEarnings = map[string]decimal.Decimal{"special_allowance": dec("3000")}
	s.CustomDeductions = map[string]decimal.Decimal{"canteen": dec("300")}

	in := ComputeInput{
		EmployeeID:    "emp-1",
		MonthDays:     30,
		PresentDays:   12,
		PaidLeaveDays: 3,
		Structure:     s,
		Settings:      testSettings(),
	}

	rec := Compute(in)

	// 15 credited days of 30: everything halves, custom components included.
	assert.True(t, rec.EarnedBasic.Equal(dec("9000")), "basic = %s", rec.EarnedBasic)
	assert.True(t, rec.EarnedHRA.Equal(dec("3000")), "hra = %s", rec.EarnedHRA)
	assert.True(t, rec.EarnedConveyance.Equal(dec("600")), "conveyance = %s", rec.EarnedConveyance)
	assert.True(t, rec.DynamicEarnings["special_allowance"].Equal(dec("1500")))
	assert.True(t, rec.DynamicDeductions["canteen"].Equal(dec("150")))
}

func TestComputeCreditedDaysCappedAtMonthDays(t *testing.T) {
	in := ComputeInput{
		EmployeeID:    "emp-1",
		MonthDays:     30,
		PresentDays:   28,
		PaidLeaveDays: 5,
		Structure:     testStructure(),
		Settings:      testSettings(),
	}

	rec := Compute(in)

	assert.True(t, rec.EarnedBasic.Equal(dec("18000")), "basic = %s", rec.EarnedBasic)
	assert.True(t, rec.EarnedHRA.Equal(dec("6000")))
}

func TestComputeEPFCappedAtCeiling(t *testing.T) {
	// 18000 basic at 12% is 2160, above the 1800 ceiling.
	in := ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 30,
		Structure:   testStructure(),
		Settings:    testSettings(),
	}

	rec := Compute(in)
	assert.True(t, rec.EPFDeduction.Equal(dec("1800")), "epf = %s", rec.EPFDeduction)
}

func TestComputeEPFOnEarnedBasicBelowCeiling(t *testing.T) {
	s := testStructure()
	s.FixedBasic = dec("10000")

	in := ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 15,
		Structure:   s,
		Settings:    testSettings(),
	}

	rec := Compute(in)

	// EPF is taken on the earned (pro-rated) basic, not the fixed one.
	assert.True(t, rec.EarnedBasic.Equal(dec("5000")))
	assert.True(t, rec.EPFDeduction.Equal(dec("600")), "epf = %s", rec.EPFDeduction)
}

func TestComputeEPFZeroWhenNotApplicable(t *testing.T) {
	s := testStructure()
	s.EPFApplicable = false

	rec := Compute(ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 30,
		Structure:   s,
		Settings:    testSettings(),
	})

	assert.True(t, rec.EPFDeduction.IsZero())
}

func TestComputeESIHardCliffAtThreshold(t *testing.T) {
	set := testSettings()

	s := testStructure()
	s.ESIApplicable = true
	s.FixedBasic = dec("14000")
	s.FixedHRA = dec("5000")
	s.FixedConveyance = dec("1000") // gross 20000, within the threshold

	eligible := Compute(ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 30,
		Structure:   s,
		Settings:    set,
	})
	require.True(t, eligible.TotalEarnings.Equal(dec("20000")))
	assert.True(t, eligible.ESIDeduction.Equal(dec("150")), "esi = %s", eligible.ESIDeduction)

	// One rupee over the threshold and the contribution vanishes entirely;
	// there is no taper.
	s.FixedConveyance = dec("7001")
	over := Compute(ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 30,
		Structure:   s,
		Settings:    set,
	})
	require.True(t, over.TotalEarnings.Equal(dec("26001")))
	assert.True(t, over.ESIDeduction.IsZero())
}

func TestComputeOvertimePayFromFixedComponents(t *testing.T) {
	s := testStructure()
	s.FixedBasic = dec("15600") // fixed gross 22800

	in := ComputeInput{
		EmployeeID:    "emp-1",
		MonthDays:     30,
		PresentDays:   20, // pro-rated month must not change the hourly rate
		OvertimeHours: 4,
		Structure:     s,
		Settings:      testSettings(),
	}

	rec := Compute(in)

	// 22800 / (30 days * 8 h) = 95/h, times 4 h at 1.5x.
	assert.True(t, rec.OvertimePay.Equal(dec("570")), "overtime pay = %s", rec.OvertimePay)
}

func TestComputeOvertimeZeroWithoutHours(t *testing.T) {
	rec := Compute(ComputeInput{
		EmployeeID:  "emp-1",
		MonthDays:   30,
		PresentDays: 30,
		Structure:   testStructure(),
		Settings:    testSettings(),
	})
	assert.True(t, rec.OvertimePay.IsZero())
}

func TestComputeTotalsAndNet(t *testing.T) {
	in := ComputeInput{
		EmployeeID:           "emp-1",
		MonthDays:            30,
		PresentDays:          30,
		Structure:            testStructure(),
		Settings:             testSettings(),
		UnpaidLeaveDeduction: dec("840"),
		AdvanceDeduction:     dec("1500"),
	}

	rec := Compute(in)

	assert.True(t, rec.TotalEarnings.Equal(dec("25200")), "earnings = %s", rec.TotalEarnings)
	// EPF 1800 (capped) + VPT 200 + unpaid 840 + advance 1500.
	assert.True(t, rec.TotalDeductions.Equal(dec("4340")), "deductions = %s", rec.TotalDeductions)
	assert.True(t, rec.NetSalary.Equal(dec("20860")), "net = %s", rec.NetSalary)
	assert.True(t, rec.TDSDeduction.IsZero())
}

func TestComputeIsDeterministic(t *testing.T) {
	in := ComputeInput{
		EmployeeID:           "emp-1",
		Month:                8,
		Year:                 2026,
		MonthDays:            31,
		PresentDays:          22.5,
		PaidLeaveDays:        2,
		OvertimeHours:        6.25,
		Structure:            testStructure(),
		Settings:             testSettings(),
		UnpaidLeaveDeduction: dec("612.90"),
		AdvanceDeduction:     dec("1000"),
	}

	first := Compute(in)
	second := Compute(in)

	assert.Equal(t, first, second)
}

func TestProrateFullMonthSkipsDivision(t *testing.T) {
	// An amount 31 does not divide must come back untouched.
	exact := prorate(dec("17333.33"), 31, dec("31"))
	assert.True(t, exact.Equal(dec("17333.33")))

	over := prorate(dec("18000"), 30, dec("45"))
	assert.True(t, over.Equal(dec("18000")))
}
