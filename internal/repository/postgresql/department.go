package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type departmentRepository struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepository{db: db}
}

func scanDepartment(row pgx.Row) (department.Department, error) {
	var dept department.Department
	var restDays []int
	err := row.Scan(
		&dept.ID, &dept.Name,
		&dept.Timing.CheckInTime, &dept.Timing.CheckOutTime,
		&dept.Timing.LateThresholdMinutes, &dept.Timing.OvertimeThresholdMinutes,
		&dept.Timing.WorkingHours,
		&restDays,
		&dept.CreatedAt, &dept.UpdatedAt,
	)
	if err != nil {
		return department.Department{}, err
	}
	for _, d := range restDays {
		dept.RestDays = append(dept.RestDays, time.Weekday(d))
	}
	return dept, nil
}

const departmentColumns = `
	id, name, check_in_time, check_out_time, late_threshold_minutes,
	overtime_threshold_minutes, working_hours, rest_days, created_at, updated_at
`

// GetByID implements department.DepartmentRepository.
func (r *departmentRepository) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM departments WHERE id = $1`, departmentColumns)

	dept, err := scanDepartment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}

	return dept, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepository) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM departments ORDER BY name`, departmentColumns)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dept)
	}

	return departments, rows.Err()
}

// UpdateTiming implements department.DepartmentRepository.
func (r *departmentRepository) UpdateTiming(ctx context.Context, departmentID string, timing department.Timing) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments
		SET check_in_time = $2,
			check_out_time = $3,
			late_threshold_minutes = $4,
			overtime_threshold_minutes = $5,
			working_hours = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		departmentID,
		timing.CheckInTime,
		timing.CheckOutTime,
		timing.LateThresholdMinutes,
		timing.OvertimeThresholdMinutes,
		timing.WorkingHours,
	)
	if err != nil {
		return fmt.Errorf("failed to update department timing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}

// GetHolidays implements department.DepartmentRepository.
func (r *departmentRepository) GetHolidays(ctx context.Context, departmentID string, from, to time.Time) ([]department.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, date, COALESCE(department_id::text, '')
		FROM holidays
		WHERE date >= $1 AND date <= $2
		  AND (department_id IS NULL OR department_id::text = $3)
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, from, to, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}
	defer rows.Close()

	var holidays []department.Holiday
	for rows.Next() {
		var h department.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.DepartmentID); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
