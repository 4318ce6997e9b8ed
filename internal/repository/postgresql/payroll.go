package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const structureColumns = `
	s.id, s.employee_id, s.fixed_basic, s.fixed_hra, s.fixed_conveyance,
	s.custom_earnings, s.custom_deductions,
	s.epf_applicable, s.esi_applicable, s.vpt_amount,
	s.per_day_salary_base, s.overtime_rate_multiplier,
	s.effective_from, s.effective_to, s.created_at, s.updated_at
`

func scanStructure(row pgx.Row) (payroll.SalaryStructure, error) {
	var s payroll.SalaryStructure
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.FixedBasic, &s.FixedHRA, &s.FixedConveyance,
		&s.CustomEarnings, &s.CustomDeductions,
		&s.EPFApplicable, &s.ESIApplicable, &s.VPTAmount,
		&s.PerDaySalaryBase, &s.OvertimeRateMultiplier,
		&s.EffectiveFrom, &s.EffectiveTo, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetActiveStructure implements payroll.PayrollRepository.
func (r *payrollRepository) GetActiveStructure(ctx context.Context, employeeID string, at time.Time) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM salary_structures s
		WHERE s.employee_id = $1
		  AND s.effective_from <= $2
		  AND (s.effective_to IS NULL OR s.effective_to >= $2)
		ORDER BY s.effective_from DESC
		LIMIT 1
	`, structureColumns)

	s, err := scanStructure(q.QueryRow(ctx, query, employeeID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryStructure{}, payroll.ErrStructureNotFound
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get active salary structure: %w", err)
	}

	return s, nil
}

// ListEmployeesWithActiveStructure implements payroll.PayrollRepository.
func (r *payrollRepository) ListEmployeesWithActiveStructure(ctx context.Context, from, to time.Time, departmentID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT s.employee_id
		FROM salary_structures s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.effective_from <= $2
		  AND (s.effective_to IS NULL OR s.effective_to >= $1)
		  AND e.status = 'active'
		  AND ($3 = '' OR e.department_id = $3)
		ORDER BY s.employee_id
	`

	rows, err := q.Query(ctx, query, from, to, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees with active structure: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpsertStructure implements payroll.PayrollRepository. A new structure with
// an open effective_to closes the previous open one the day before it starts.
func (r *payrollRepository) UpsertStructure(ctx context.Context, structure payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		closeQuery := `
			UPDATE salary_structures
			SET effective_to = $2::date - INTERVAL '1 day',
				updated_at = NOW()
			WHERE employee_id = $1
			  AND effective_to IS NULL
			  AND effective_from < $2
		`
		if _, err := q.Exec(ctx, closeQuery, structure.EmployeeID, structure.EffectiveFrom); err != nil {
			return fmt.Errorf("failed to close previous salary structure: %w", err)
		}

		insertQuery := `
			INSERT INTO salary_structures (
				employee_id, fixed_basic, fixed_hra, fixed_conveyance,
				custom_earnings, custom_deductions,
				epf_applicable, esi_applicable, vpt_amount,
				per_day_salary_base, overtime_rate_multiplier,
				effective_from, effective_to
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at
		`
		return q.QueryRow(ctx, insertQuery,
			structure.EmployeeID, structure.FixedBasic, structure.FixedHRA, structure.FixedConveyance,
			structure.CustomEarnings, structure.CustomDeductions,
			structure.EPFApplicable, structure.ESIApplicable, structure.VPTAmount,
			structure.PerDaySalaryBase, structure.OvertimeRateMultiplier,
			structure.EffectiveFrom, structure.EffectiveTo,
		).Scan(&structure.ID, &structure.CreatedAt, &structure.UpdatedAt)
	})
	if err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("failed to upsert salary structure: %w", err)
	}

	return structure, nil
}

// GetStructuresByEmployee implements payroll.PayrollRepository.
func (r *payrollRepository) GetStructuresByEmployee(ctx context.Context, employeeID string) ([]payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM salary_structures s
		WHERE s.employee_id = $1
		ORDER BY s.effective_from DESC
	`, structureColumns)

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var structures []payroll.SalaryStructure
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}

	return structures, rows.Err()
}

// GetSettings implements payroll.PayrollRepository. A missing row maps to
// ErrSettingsNotFound so the service layer can fall back to its configured
// defaults.
func (r *payrollRepository) GetSettings(ctx context.Context) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, epf_employee_rate, epf_ceiling_amount,
			esi_employee_rate, esi_threshold,
			standard_daily_hours, overtime_rate_multiplier, updated_at
		FROM payroll_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query).Scan(
		&s.ID, &s.EPFEmployeeRate, &s.EPFCeilingAmount,
		&s.ESIEmployeeRate, &s.ESIThreshold,
		&s.StandardDailyHours, &s.OvertimeRateMultiplier, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

// UpsertSettings implements payroll.PayrollRepository.
func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (
			id, epf_employee_rate, epf_ceiling_amount,
			esi_employee_rate, esi_threshold,
			standard_daily_hours, overtime_rate_multiplier
		) VALUES (
			COALESCE(NULLIF($1, ''), gen_random_uuid()::text),
			$2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (id) DO UPDATE
		SET epf_employee_rate = EXCLUDED.epf_employee_rate,
			epf_ceiling_amount = EXCLUDED.epf_ceiling_amount,
			esi_employee_rate = EXCLUDED.esi_employee_rate,
			esi_threshold = EXCLUDED.esi_threshold,
			standard_daily_hours = EXCLUDED.standard_daily_hours,
			overtime_rate_multiplier = EXCLUDED.overtime_rate_multiplier,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	err := q.QueryRow(ctx, query,
		settings.ID, settings.EPFEmployeeRate, settings.EPFCeilingAmount,
		settings.ESIEmployeeRate, settings.ESIThreshold,
		settings.StandardDailyHours, settings.OvertimeRateMultiplier,
	).Scan(&settings.ID, &settings.UpdatedAt)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return settings, nil
}

const recordColumns = `
	p.id, p.employee_id, p.month, p.year,
	p.month_days, p.present_days, p.paid_leave_days,
	p.overtime_hours, p.overtime_pay,
	p.earned_basic, p.earned_hra, p.earned_conveyance,
	p.dynamic_earnings, p.dynamic_deductions,
	p.epf_deduction, p.esi_deduction, p.vpt_deduction, p.tds_deduction,
	p.unpaid_leave_deduction, p.advance_deduction,
	p.total_earnings, p.total_deductions, p.net_salary,
	p.status, p.created_at, p.updated_at
`

func scanRecord(row pgx.Row) (payroll.Record, error) {
	var rec payroll.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year,
		&rec.MonthDays, &rec.PresentDays, &rec.PaidLeaveDays,
		&rec.OvertimeHours, &rec.OvertimePay,
		&rec.EarnedBasic, &rec.EarnedHRA, &rec.EarnedConveyance,
		&rec.DynamicEarnings, &rec.DynamicDeductions,
		&rec.EPFDeduction, &rec.ESIDeduction, &rec.VPTDeduction, &rec.TDSDeduction,
		&rec.UnpaidLeaveDeduction, &rec.AdvanceDeduction,
		&rec.TotalEarnings, &rec.TotalDeductions, &rec.NetSalary,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// UpsertRecord implements payroll.PayrollRepository. Re-runs overwrite the
// previous figures for the period but never regress an approved or paid row.
func (r *payrollRepository) UpsertRecord(ctx context.Context, record payroll.Record) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			employee_id, month, year,
			month_days, present_days, paid_leave_days,
			overtime_hours, overtime_pay,
			earned_basic, earned_hra, earned_conveyance,
			dynamic_earnings, dynamic_deductions,
			epf_deduction, esi_deduction, vpt_deduction, tds_deduction,
			unpaid_leave_deduction, advance_deduction,
			total_earnings, total_deductions, net_salary, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (employee_id, month, year) DO UPDATE
		SET month_days = EXCLUDED.month_days,
			present_days = EXCLUDED.present_days,
			paid_leave_days = EXCLUDED.paid_leave_days,
			overtime_hours = EXCLUDED.overtime_hours,
			overtime_pay = EXCLUDED.overtime_pay,
			earned_basic = EXCLUDED.earned_basic,
			earned_hra = EXCLUDED.earned_hra,
			earned_conveyance = EXCLUDED.earned_conveyance,
			dynamic_earnings = EXCLUDED.dynamic_earnings,
			dynamic_deductions = EXCLUDED.dynamic_deductions,
			epf_deduction = EXCLUDED.epf_deduction,
			esi_deduction = EXCLUDED.esi_deduction,
			vpt_deduction = EXCLUDED.vpt_deduction,
			tds_deduction = EXCLUDED.tds_deduction,
			unpaid_leave_deduction = EXCLUDED.unpaid_leave_deduction,
			advance_deduction = EXCLUDED.advance_deduction,
			total_earnings = EXCLUDED.total_earnings,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			status = EXCLUDED.status,
			updated_at = NOW()
		WHERE payroll_records.status IN ('draft', 'processed')
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Month, record.Year,
		record.MonthDays, record.PresentDays, record.PaidLeaveDays,
		record.OvertimeHours, record.OvertimePay,
		record.EarnedBasic, record.EarnedHRA, record.EarnedConveyance,
		record.DynamicEarnings, record.DynamicDeductions,
		record.EPFDeduction, record.ESIDeduction, record.VPTDeduction, record.TDSDeduction,
		record.UnpaidLeaveDeduction, record.AdvanceDeduction,
		record.TotalEarnings, record.TotalDeductions, record.NetSalary, record.Status,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Record{}, payroll.ErrRecordNotEditable
		}
		return payroll.Record{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return record, nil
}

// GetRecordByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM payroll_records p WHERE p.id = $1`, recordColumns)

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, fmt.Errorf("failed to get payroll record by ID: %w", err)
	}

	return rec, nil
}

// ListRecords implements payroll.PayrollRepository.
func (r *payrollRepository) ListRecords(ctx context.Context, filter payroll.RecordFilter) ([]payroll.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Month != 0 {
		where += fmt.Sprintf(" AND p.month = $%d", argIdx)
		args = append(args, filter.Month)
		argIdx++
	}
	if filter.Year != 0 {
		where += fmt.Sprintf(" AND p.year = $%d", argIdx)
		args = append(args, filter.Year)
		argIdx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payroll_records p %s", where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT %s FROM payroll_records p
		%s
		ORDER BY p.year DESC, p.month DESC, p.employee_id
		LIMIT $%d OFFSET $%d
	`, recordColumns, where, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// UpdateRecord implements payroll.PayrollRepository. Only draft and processed
// rows accept figure updates.
func (r *payrollRepository) UpdateRecord(ctx context.Context, record payroll.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET present_days = $2,
			paid_leave_days = $3,
			overtime_hours = $4,
			overtime_pay = $5,
			earned_basic = $6,
			earned_hra = $7,
			earned_conveyance = $8,
			dynamic_earnings = $9,
			dynamic_deductions = $10,
			epf_deduction = $11,
			esi_deduction = $12,
			vpt_deduction = $13,
			tds_deduction = $14,
			unpaid_leave_deduction = $15,
			advance_deduction = $16,
			total_earnings = $17,
			total_deductions = $18,
			net_salary = $19,
			updated_at = NOW()
		WHERE id = $1
		  AND status IN ('draft', 'processed')
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.PresentDays, record.PaidLeaveDays,
		record.OvertimeHours, record.OvertimePay,
		record.EarnedBasic, record.EarnedHRA, record.EarnedConveyance,
		record.DynamicEarnings, record.DynamicDeductions,
		record.EPFDeduction, record.ESIDeduction, record.VPTDeduction, record.TDSDeduction,
		record.UnpaidLeaveDeduction, record.AdvanceDeduction,
		record.TotalEarnings, record.TotalDeductions, record.NetSalary,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRecordNotEditable
	}

	return nil
}

// UpdateRecordStatus implements payroll.PayrollRepository.
func (r *payrollRepository) UpdateRecordStatus(ctx context.Context, id string, from, to payroll.RecordStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update payroll record status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrInvalidStatusChange
	}

	return nil
}
