package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stafftrack/wfm-backend-go/internal/config"
	"github.com/stafftrack/wfm-backend-go/internal/domain/advance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.ApplicationRepository
	advanceRepo    advance.AdvanceRepository
	cfg            config.PayrollConfig
	logger         *slog.Logger
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.ApplicationRepository,
	advanceRepo advance.AdvanceRepository,
	cfg config.PayrollConfig,
	logger *slog.Logger,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		advanceRepo:    advanceRepo,
		cfg:            cfg,
		logger:         logger,
	}
}

// periodBounds returns the first day, last day and day count of a month.
func periodBounds(month, year int) (from, to time.Time, monthDays int) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to, to.Day()
}

// settingsOrDefault reads the stored company settings, falling back to the
// configured statutory defaults when none have been saved yet.
func (s *PayrollServiceImpl) settingsOrDefault(ctx context.Context) (payroll.Settings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, payroll.ErrSettingsNotFound) {
		return payroll.Settings{}, err
	}

	epfRate, err := decimal.NewFromString(s.cfg.EPFEmployeeRate)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("invalid EPF rate default: %w", err)
	}
	epfCeiling, err := decimal.NewFromString(s.cfg.EPFCeilingAmount)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("invalid EPF ceiling default: %w", err)
	}
	esiRate, err := decimal.NewFromString(s.cfg.ESIEmployeeRate)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("invalid ESI rate default: %w", err)
	}
	esiThreshold, err := decimal.NewFromString(s.cfg.ESIThreshold)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("invalid ESI threshold default: %w", err)
	}
	multiplier, err := decimal.NewFromString(s.cfg.OvertimeMultiplier)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("invalid overtime multiplier default: %w", err)
	}

	return payroll.Settings{
		EPFEmployeeRate:        epfRate,
		EPFCeilingAmount:       epfCeiling,
		ESIEmployeeRate:        esiRate,
		ESIThreshold:           esiThreshold,
		StandardDailyHours:     s.cfg.StandardDailyHours,
		OvertimeRateMultiplier: multiplier,
	}, nil
}

// leaveFigures walks the employee's approved applications intersecting the
// period and splits them into paid days and the unpaid deduction total. A day
// already credited through attendance is never counted again, and the unpaid
// deduction of an application is attributed to the month its start date falls
// in so adjacent-month runs cannot both apply it.
func leaveFigures(apps []leave.Application, creditedDates []string, from, to time.Time) (paidDays float64, unpaidDeduction decimal.Decimal) {
	credited := make(map[string]struct{}, len(creditedDates))
	for _, d := range creditedDates {
		credited[d] = struct{}{}
	}

	unpaidDeduction = decimal.Zero
	for _, app := range apps {
		casualRemaining := app.CasualDays

		for day := app.StartDate; !day.After(app.EndDate); day = day.AddDate(0, 0, 1) {
			if day.Before(from) || day.After(to) {
				casualRemaining--
				continue
			}
			if _, ok := credited[day.Format("2006-01-02")]; ok {
				casualRemaining--
				continue
			}
			if casualRemaining > 0 {
				paidDays++
				casualRemaining--
			}
		}

		if app.AffectsPayroll && !app.StartDate.Before(from) && !app.StartDate.After(to) {
			unpaidDeduction = unpaidDeduction.Add(app.DeductionAmount)
		}
	}

	return paidDays, unpaidDeduction
}

// computeForEmployee gathers the three event streams for one employee and
// runs the calculation. The employee ID must already be canonical.
func (s *PayrollServiceImpl) computeForEmployee(ctx context.Context, employeeID string, month, year int, settings payroll.Settings) (payroll.Record, error) {
	from, to, monthDays := periodBounds(month, year)

	structure, err := s.payrollRepo.GetActiveStructure(ctx, employeeID, to)
	if err != nil {
		return payroll.Record{}, err
	}

	summary, err := s.attendanceRepo.SummaryForPeriod(ctx, employeeID, from, to)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	apps, err := s.leaveRepo.ApprovedInPeriod(ctx, employeeID, from, to)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to read leave ledger: %w", err)
	}
	paidDays, unpaidDeduction := leaveFigures(apps, summary.CreditedDates, from, to)

	advanceDeduction, err := s.advanceRepo.InstallmentsDue(ctx, employeeID, month, year)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to read advance ledger: %w", err)
	}

	return Compute(ComputeInput{
		EmployeeID:           employeeID,
		Month:                month,
		Year:                 year,
		MonthDays:            monthDays,
		PresentDays:          float64(summary.PresentDays),
		PaidLeaveDays:        paidDays,
		OvertimeHours:        summary.OvertimeHours,
		Structure:            structure,
		Settings:             settings,
		UnpaidLeaveDeduction: unpaidDeduction,
		AdvanceDeduction:     advanceDeduction,
	}), nil
}

// BulkProcess implements payroll.PayrollService. Employees are computed with
// bounded parallelism; a failure for one employee is recorded and the rest of
// the batch continues.
func (s *PayrollServiceImpl) BulkProcess(ctx context.Context, req payroll.ProcessRequest) (payroll.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessResponse{}, err
	}

	settings, err := s.settingsOrDefault(ctx)
	if err != nil {
		return payroll.ProcessResponse{}, err
	}

	from, to, _ := periodBounds(req.Month, req.Year)
	employeeIDs, err := s.payrollRepo.ListEmployeesWithActiveStructure(ctx, from, to, req.DepartmentID)
	if err != nil {
		return payroll.ProcessResponse{}, err
	}

	var mu sync.Mutex
	records := make([]payroll.Record, 0, len(employeeIDs))
	var empErrors []payroll.EmployeeError

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BulkWorkerLimit)

	for _, id := range employeeIDs {
		employeeID := id
		g.Go(func() error {
			record, err := s.computeForEmployee(gCtx, employeeID, req.Month, req.Year, settings)
			if err == nil {
				record, err = s.payrollRepo.UpsertRecord(gCtx, record)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("payroll computation failed for employee",
					slog.String("employee_id", employeeID),
					slog.Int("month", req.Month),
					slog.Int("year", req.Year),
					slog.Any("error", err),
				)
				empErrors = append(empErrors, payroll.EmployeeError{
					EmployeeID: employeeID,
					Error:      err.Error(),
				})
				return nil
			}
			records = append(records, record)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return payroll.ProcessResponse{}, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })

	resp := payroll.ProcessResponse{
		Month:     req.Month,
		Year:      req.Year,
		Processed: len(records),
		Errors:    empErrors,
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}

	return resp, nil
}

func toRecordResponse(rec payroll.Record) payroll.RecordResponse {
	resp := payroll.RecordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Month:      rec.Month,
		Year:       rec.Year,

		MonthDays:     rec.MonthDays,
		PresentDays:   rec.PresentDays,
		PaidLeaveDays: rec.PaidLeaveDays,

		OvertimeHours: rec.OvertimeHours,
		OvertimePay:   rec.OvertimePay,

		EarnedBasic:      rec.EarnedBasic,
		EarnedHRA:        rec.EarnedHRA,
		EarnedConveyance: rec.EarnedConveyance,

		DynamicEarnings:   rec.DynamicEarnings,
		DynamicDeductions: rec.DynamicDeductions,

		EPFDeduction:         rec.EPFDeduction,
		ESIDeduction:         rec.ESIDeduction,
		VPTDeduction:         rec.VPTDeduction,
		TDSDeduction:         rec.TDSDeduction,
		UnpaidLeaveDeduction: rec.UnpaidLeaveDeduction,
		AdvanceDeduction:     rec.AdvanceDeduction,

		TotalEarnings:   rec.TotalEarnings,
		TotalDeductions: rec.TotalDeductions,
		NetSalary:       rec.NetSalary,

		Status: string(rec.Status),
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	if rec.EmployeeCode != nil {
		resp.EmployeeCode = *rec.EmployeeCode
	}
	return resp
}

// GetRecord implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.RecordResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	resp := toRecordResponse(rec)
	if emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID); err == nil {
		resp.EmployeeName = emp.FullName
		resp.EmployeeCode = emp.EmployeeCode
	}

	return resp, nil
}

// ListRecords implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListRecords(ctx context.Context, filter payroll.RecordFilter) (payroll.ListRecordResponse, error) {
	records, total, err := s.payrollRepo.ListRecords(ctx, filter)
	if err != nil {
		return payroll.ListRecordResponse{}, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	resp := payroll.ListRecordResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}

	return resp, nil
}

// recomputeTotals rebuilds the three totals from the record's stored
// components after a manual correction.
func recomputeTotals(rec *payroll.Record) {
	totalEarnings := rec.EarnedBasic.Add(rec.EarnedHRA).Add(rec.EarnedConveyance).Add(rec.OvertimePay)
	for _, amount := range rec.DynamicEarnings {
		totalEarnings = totalEarnings.Add(amount)
	}

	totalDeductions := rec.EPFDeduction.Add(rec.ESIDeduction).Add(rec.VPTDeduction).Add(rec.TDSDeduction).
		Add(rec.UnpaidLeaveDeduction).Add(rec.AdvanceDeduction)
	for _, amount := range rec.DynamicDeductions {
		totalDeductions = totalDeductions.Add(amount)
	}

	rec.TotalEarnings = totalEarnings
	rec.TotalDeductions = totalDeductions
	rec.NetSalary = totalEarnings.Sub(totalDeductions)
}

// UpdateRecord implements payroll.PayrollService.
func (s *PayrollServiceImpl) UpdateRecord(ctx context.Context, req payroll.UpdateRecordRequest) (payroll.RecordResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, req.ID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if rec.Status != payroll.StatusDraft && rec.Status != payroll.StatusProcessed {
		return payroll.RecordResponse{}, payroll.ErrRecordNotEditable
	}

	if req.OvertimePay != nil {
		rec.OvertimePay = *req.OvertimePay
	}
	if req.EarnedBasic != nil {
		rec.EarnedBasic = *req.EarnedBasic
	}
	if req.EarnedHRA != nil {
		rec.EarnedHRA = *req.EarnedHRA
	}
	if req.EarnedConveyance != nil {
		rec.EarnedConveyance = *req.EarnedConveyance
	}
	if req.DynamicEarnings != nil {
		rec.DynamicEarnings = req.DynamicEarnings
	}
	if req.DynamicDeductions != nil {
		rec.DynamicDeductions = req.DynamicDeductions
	}
	if req.TDSDeduction != nil {
		rec.TDSDeduction = *req.TDSDeduction
	}

	recomputeTotals(&rec)

	if err := s.payrollRepo.UpdateRecord(ctx, rec); err != nil {
		return payroll.RecordResponse{}, err
	}

	return toRecordResponse(rec), nil
}

// ApproveRecord implements payroll.PayrollService.
func (s *PayrollServiceImpl) ApproveRecord(ctx context.Context, id string) error {
	return s.payrollRepo.UpdateRecordStatus(ctx, id, payroll.StatusProcessed, payroll.StatusApproved)
}

// MarkRecordPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkRecordPaid(ctx context.Context, id string) error {
	return s.payrollRepo.UpdateRecordStatus(ctx, id, payroll.StatusApproved, payroll.StatusPaid)
}

// GetSettings implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.SettingsResponse, error) {
	settings, err := s.settingsOrDefault(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	return payroll.SettingsResponse{
		EPFEmployeeRate:        settings.EPFEmployeeRate,
		EPFCeilingAmount:       settings.EPFCeilingAmount,
		ESIEmployeeRate:        settings.ESIEmployeeRate,
		ESIThreshold:           settings.ESIThreshold,
		StandardDailyHours:     settings.StandardDailyHours,
		OvertimeRateMultiplier: settings.OvertimeRateMultiplier,
	}, nil
}

// UpdateSettings implements payroll.PayrollService.
func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdateSettingsRequest) (payroll.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettingsResponse{}, err
	}

	current, err := s.settingsOrDefault(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	if req.EPFEmployeeRate != nil {
		current.EPFEmployeeRate = *req.EPFEmployeeRate
	}
	if req.EPFCeilingAmount != nil {
		current.EPFCeilingAmount = *req.EPFCeilingAmount
	}
	if req.ESIEmployeeRate != nil {
		current.ESIEmployeeRate = *req.ESIEmployeeRate
	}
	if req.ESIThreshold != nil {
		current.ESIThreshold = *req.ESIThreshold
	}
	if req.StandardDailyHours != nil {
		current.StandardDailyHours = *req.StandardDailyHours
	}
	if req.OvertimeRateMultiplier != nil {
		current.OvertimeRateMultiplier = *req.OvertimeRateMultiplier
	}

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	return payroll.SettingsResponse{
		EPFEmployeeRate:        updated.EPFEmployeeRate,
		EPFCeilingAmount:       updated.EPFCeilingAmount,
		ESIEmployeeRate:        updated.ESIEmployeeRate,
		ESIThreshold:           updated.ESIThreshold,
		StandardDailyHours:     updated.StandardDailyHours,
		OvertimeRateMultiplier: updated.OvertimeRateMultiplier,
	}, nil
}

// GetStructures implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetStructures(ctx context.Context, employeeID string) ([]payroll.SalaryStructure, error) {
	emp, err := s.employeeRepo.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.payrollRepo.GetStructuresByEmployee(ctx, emp.ID)
}

// UpsertStructure implements payroll.PayrollService.
func (s *PayrollServiceImpl) UpsertStructure(ctx context.Context, req payroll.UpsertStructureRequest) (payroll.SalaryStructure, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructure{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return payroll.SalaryStructure{}, err
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("failed to parse effective_from: %w", err)
	}

	structure := payroll.SalaryStructure{
		EmployeeID:       emp.ID,
		FixedBasic:       req.FixedBasic,
		FixedHRA:         req.FixedHRA,
		FixedConveyance:  req.FixedConveyance,
		CustomEarnings:   req.CustomEarnings,
		CustomDeductions: req.CustomDeductions,
		EPFApplicable:    req.EPFApplicable,
		ESIApplicable:    req.ESIApplicable,
		VPTAmount:        req.VPTAmount,
		PerDaySalaryBase: payroll.PerDayBase(req.PerDaySalaryBase),
		EffectiveFrom:    effectiveFrom,
	}

	return s.payrollRepo.UpsertStructure(ctx, structure)
}
