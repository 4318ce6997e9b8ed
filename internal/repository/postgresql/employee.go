package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, department_id, status, joined_at, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.DepartmentID,
		&emp.Status, &emp.JoinedAt, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// Resolve implements employee.EmployeeRepository. One query covers both
// identifier forms; more than one hit means the identifier is ambiguous and
// the caller must fail, not guess.
func (r *employeeRepository) Resolve(ctx context.Context, identifier string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE id::text = $1 OR employee_code = $1
	`, employeeColumns)

	rows, err := q.Query(ctx, query, identifier)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	defer rows.Close()

	var matches []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
		}
		matches = append(matches, emp)
	}
	if err := rows.Err(); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to resolve employee: %w", err)
	}

	if len(matches) != 1 {
		return employee.Employee{}, employee.ErrEmployeeNotResolved
	}

	return matches[0], nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE status = 'active'
		  AND ($1 = '' OR department_id = $1)
		ORDER BY employee_code
	`, employeeColumns)

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
