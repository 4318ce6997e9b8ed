package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type leaveApplicationRepository struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepository{db: db}
}

const leaveColumns = `
	l.id, l.employee_id, l.leave_type, l.start_date, l.end_date,
	l.total_days, l.casual_days, l.unpaid_days, l.permission_hours,
	l.status, l.reason, l.rejection_reason, l.attachment_url,
	l.approved_by_tl, l.approved_by_tl_at, l.approved_by_hr, l.approved_by_hr_at,
	l.affects_payroll, l.deduction_amount, l.created_at, l.updated_at
`

func scanApplication(row pgx.Row) (leave.Application, error) {
	var app leave.Application
	err := row.Scan(
		&app.ID, &app.EmployeeID, &app.Type, &app.StartDate, &app.EndDate,
		&app.TotalDays, &app.CasualDays, &app.UnpaidDays, &app.PermissionHours,
		&app.Status, &app.Reason, &app.RejectionReason, &app.AttachmentURL,
		&app.ApprovedByTL, &app.ApprovedByTLAt, &app.ApprovedByHR, &app.ApprovedByHRAt,
		&app.AffectsPayroll, &app.DeductionAmount, &app.CreatedAt, &app.UpdatedAt,
	)
	return app, err
}

// Create implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) Create(ctx context.Context, app leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			employee_id, leave_type, start_date, end_date,
			total_days, casual_days, unpaid_days, permission_hours,
			status, reason, attachment_url, affects_payroll, deduction_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		app.EmployeeID, app.Type, app.StartDate, app.EndDate,
		app.TotalDays, app.CasualDays, app.UnpaidDays, app.PermissionHours,
		app.Status, app.Reason, app.AttachmentURL, app.AffectsPayroll, app.DeductionAmount,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return app, nil
}

// GetByID implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM leave_applications l WHERE l.id = $1`, leaveColumns)

	app, err := scanApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Application{}, leave.ErrApplicationNotFound
		}
		return leave.Application{}, fmt.Errorf("failed to get leave application by ID: %w", err)
	}

	return app, nil
}

// UpdateStatus implements leave.ApplicationRepository. The expected-status
// guard in the WHERE clause makes racing approvals lose cleanly instead of
// double-applying.
func (r *leaveApplicationRepository) UpdateStatus(ctx context.Context, app leave.Application, expected leave.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $2,
			rejection_reason = $3,
			approved_by_tl = $4,
			approved_by_tl_at = $5,
			approved_by_hr = $6,
			approved_by_hr_at = $7,
			affects_payroll = $8,
			deduction_amount = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = $10
	`

	tag, err := q.Exec(ctx, query,
		app.ID, app.Status, app.RejectionReason,
		app.ApprovedByTL, app.ApprovedByTLAt, app.ApprovedByHR, app.ApprovedByHRAt,
		app.AffectsPayroll, app.DeductionAmount, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrAlreadyProcessed
	}

	return nil
}

// HasOverlapping implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_applications
			WHERE employee_id = $1
			  AND status NOT IN ('cancelled', 'rejected_by_tl', 'rejected_by_hr')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// List implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) List(ctx context.Context, filter leave.Filter) ([]leave.Application, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND l.employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND l.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leave_applications l %s", where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
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
		SELECT %s FROM leave_applications l
		%s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, where, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, total, rows.Err()
}

// ApprovedInPeriod implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) ApprovedInPeriod(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM leave_applications l
		WHERE l.employee_id = $1
		  AND l.status = 'approved'
		  AND l.start_date <= $3
		  AND l.end_date >= $2
		ORDER BY l.start_date
	`, leaveColumns)

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

// GetByEmployee implements leave.BalanceRepository. A missing row reads as a
// zero balance, not an error.
func (r *leaveBalanceRepository) GetByEmployee(ctx context.Context, employeeID string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, casual_days, permission_hours, updated_at
		FROM leave_balances
		WHERE employee_id = $1
	`

	var bal leave.Balance
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&bal.EmployeeID, &bal.CasualDays, &bal.PermissionHours, &bal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{EmployeeID: employeeID}, nil
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return bal, nil
}

// AdjustBalance implements leave.BalanceRepository.
func (r *leaveBalanceRepository) AdjustBalance(ctx context.Context, employeeID string, casualDays, permissionHours float64) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (employee_id, casual_days, permission_hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id) DO UPDATE
		SET casual_days = leave_balances.casual_days + EXCLUDED.casual_days,
			permission_hours = leave_balances.permission_hours + EXCLUDED.permission_hours,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, employeeID, casualDays, permissionHours); err != nil {
		return fmt.Errorf("failed to adjust leave balance: %w", err)
	}

	return nil
}

// RecordAccrual implements leave.BalanceRepository.
func (r *leaveBalanceRepository) RecordAccrual(ctx context.Context, entry leave.AccrualEntry) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_accruals (employee_id, year, month, casual_days, permission_hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, year, month) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		entry.EmployeeID, entry.Year, entry.Month, entry.CasualDays, entry.PermissionHours,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record leave accrual: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
