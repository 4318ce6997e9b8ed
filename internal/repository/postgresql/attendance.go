package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stafftrack/wfm-backend-go/internal/domain/attendance"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.attendance_type,
	a.check_in_time, a.check_in_latitude, a.check_in_longitude, a.check_in_accuracy, a.check_in_address, a.check_in_photo_url,
	a.check_out_time, a.check_out_latitude, a.check_out_longitude, a.check_out_accuracy, a.check_out_address, a.check_out_photo_url,
	a.status, a.is_late, a.late_minutes, a.working_hours,
	a.overtime_hours, a.ot_status, a.ot_type,
	a.ot_start_time, a.ot_start_latitude, a.ot_start_longitude, a.ot_start_accuracy, a.ot_start_address, a.ot_start_photo_url,
	a.ot_end_time, a.ot_end_latitude, a.ot_end_longitude, a.ot_end_accuracy, a.ot_end_address, a.ot_end_photo_url,
	a.manual_ot_hours, a.auto_corrected, a.reason, a.created_at, a.updated_at
`

// evidenceScan holds the nullable columns one Evidence unpacks from.
type evidenceScan struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	Address   *string
	PhotoURL  *string
}

func (e evidenceScan) toEvidence() *attendance.Evidence {
	if e.Latitude == nil || e.Longitude == nil || e.PhotoURL == nil {
		return nil
	}
	return &attendance.Evidence{
		Latitude:  *e.Latitude,
		Longitude: *e.Longitude,
		Accuracy:  e.Accuracy,
		Address:   e.Address,
		PhotoURL:  *e.PhotoURL,
	}
}

func evidenceFields(e *attendance.Evidence) (lat, lon, acc *float64, addr, photo *string) {
	if e == nil {
		return nil, nil, nil, nil, nil
	}
	return &e.Latitude, &e.Longitude, e.Accuracy, e.Address, &e.PhotoURL
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var checkIn, checkOut, otStart, otEnd evidenceScan
	var otType *string

	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.Type,
		&att.CheckInTime, &checkIn.Latitude, &checkIn.Longitude, &checkIn.Accuracy, &checkIn.Address, &checkIn.PhotoURL,
		&att.CheckOutTime, &checkOut.Latitude, &checkOut.Longitude, &checkOut.Accuracy, &checkOut.Address, &checkOut.PhotoURL,
		&att.Status, &att.IsLate, &att.LateMinutes, &att.WorkingHours,
		&att.OvertimeHours, &att.OTStatus, &otType,
		&att.OTStartTime, &otStart.Latitude, &otStart.Longitude, &otStart.Accuracy, &otStart.Address, &otStart.PhotoURL,
		&att.OTEndTime, &otEnd.Latitude, &otEnd.Longitude, &otEnd.Accuracy, &otEnd.Address, &otEnd.PhotoURL,
		&att.ManualOTHours, &att.AutoCorrected, &att.Reason, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.CheckIn = checkIn.toEvidence()
	att.CheckOut = checkOut.toEvidence()
	att.OTStart = otStart.toEvidence()
	att.OTEnd = otEnd.toEvidence()
	if otType != nil {
		t := attendance.OTType(*otType)
		att.OTType = &t
	}

	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	ciLat, ciLon, ciAcc, ciAddr, ciPhoto := evidenceFields(record.CheckIn)
	otLat, otLon, otAcc, otAddr, otPhoto := evidenceFields(record.OTStart)

	var otType *string
	if record.OTType != nil {
		s := string(*record.OTType)
		otType = &s
	}

	query := `
		INSERT INTO attendances (
			employee_id, date, attendance_type,
			check_in_time, check_in_latitude, check_in_longitude, check_in_accuracy, check_in_address, check_in_photo_url,
			status, is_late, late_minutes,
			overtime_hours, ot_status, ot_type,
			ot_start_time, ot_start_latitude, ot_start_longitude, ot_start_accuracy, ot_start_address, ot_start_photo_url,
			manual_ot_hours, auto_corrected, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.Type,
		record.CheckInTime, ciLat, ciLon, ciAcc, ciAddr, ciPhoto,
		record.Status, record.IsLate, record.LateMinutes,
		record.OvertimeHours, record.OTStatus, otType,
		record.OTStartTime, otLat, otLon, otAcc, otAddr, otPhoto,
		record.ManualOTHours, record.AutoCorrected, record.Reason,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// AttachCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) AttachCheckIn(ctx context.Context, record attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	ciLat, ciLon, ciAcc, ciAddr, ciPhoto := evidenceFields(record.CheckIn)

	query := `
		UPDATE attendances
		SET attendance_type = $2,
			check_in_time = $3,
			check_in_latitude = $4,
			check_in_longitude = $5,
			check_in_accuracy = $6,
			check_in_address = $7,
			check_in_photo_url = $8,
			status = $9,
			is_late = $10,
			late_minutes = $11,
			reason = COALESCE($12, reason),
			updated_at = NOW()
		WHERE id = $1
		  AND check_in_time IS NULL
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.Type, record.CheckInTime, ciLat, ciLon, ciAcc, ciAddr, ciPhoto,
		record.Status, record.IsLate, record.LateMinutes, record.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to attach check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyCheckedIn
	}

	return nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM attendances a WHERE a.id = $1`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
		LIMIT 1
	`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// CompleteCheckOut implements attendance.AttendanceRepository. The WHERE
// clause carries the state-machine guard so a concurrent duplicate or a
// check-out against a swept record never overwrites anything.
func (r *attendanceRepository) CompleteCheckOut(ctx context.Context, record attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	coLat, coLon, coAcc, coAddr, coPhoto := evidenceFields(record.CheckOut)

	query := `
		UPDATE attendances
		SET check_out_time = $2,
			check_out_latitude = $3,
			check_out_longitude = $4,
			check_out_accuracy = $5,
			check_out_address = $6,
			check_out_photo_url = $7,
			status = $8,
			working_hours = $9,
			updated_at = NOW()
		WHERE id = $1
		  AND check_out_time IS NULL
		  AND auto_corrected = FALSE
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.CheckOutTime, coLat, coLon, coAcc, coAddr, coPhoto,
		record.Status, record.WorkingHours,
	)
	if err != nil {
		return fmt.Errorf("failed to complete check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyCheckedOut
	}

	return nil
}

// BeginOvertime implements attendance.AttendanceRepository.
func (r *attendanceRepository) BeginOvertime(ctx context.Context, record attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	otLat, otLon, otAcc, otAddr, otPhoto := evidenceFields(record.OTStart)

	var otType *string
	if record.OTType != nil {
		s := string(*record.OTType)
		otType = &s
	}

	query := `
		UPDATE attendances
		SET ot_status = 'in_progress',
			ot_type = $2,
			ot_start_time = $3,
			ot_start_latitude = $4,
			ot_start_longitude = $5,
			ot_start_accuracy = $6,
			ot_start_address = $7,
			ot_start_photo_url = $8,
			updated_at = NOW()
		WHERE id = $1
		  AND ot_status <> 'in_progress'
	`

	tag, err := q.Exec(ctx, query,
		record.ID, otType, record.OTStartTime, otLat, otLon, otAcc, otAddr, otPhoto,
	)
	if err != nil {
		return fmt.Errorf("failed to begin overtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrOvertimeInProgress
	}

	return nil
}

// FinishOvertime implements attendance.AttendanceRepository.
func (r *attendanceRepository) FinishOvertime(ctx context.Context, record attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	otLat, otLon, otAcc, otAddr, otPhoto := evidenceFields(record.OTEnd)

	query := `
		UPDATE attendances
		SET ot_status = 'completed',
			ot_end_time = $2,
			ot_end_latitude = $3,
			ot_end_longitude = $4,
			ot_end_accuracy = $5,
			ot_end_address = $6,
			ot_end_photo_url = $7,
			overtime_hours = $8,
			manual_ot_hours = $9,
			working_hours = $10,
			updated_at = NOW()
		WHERE id = $1
		  AND ot_status = 'in_progress'
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.OTEndTime, otLat, otLon, otAcc, otAddr, otPhoto,
		record.OvertimeHours, record.ManualOTHours, record.WorkingHours,
	)
	if err != nil {
		return fmt.Errorf("failed to finish overtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrOvertimeNotInProgress
	}

	return nil
}

// GetOvertimeInProgress implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetOvertimeInProgress(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM attendances a
		WHERE a.employee_id = $1 AND a.ot_status = 'in_progress'
		ORDER BY a.date DESC
		LIMIT 1
	`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get overtime in progress: %w", err)
	}

	return &att, nil
}

// ListOpen implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpen(ctx context.Context) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM attendances a
		WHERE a.check_in_time IS NOT NULL
		  AND a.check_out_time IS NULL
		  AND a.auto_corrected = FALSE
		ORDER BY a.date
	`, attendanceColumns)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}

// AutoClose implements attendance.AttendanceRepository. The guard keeps
// repeated sweep executions idempotent per record.
func (r *attendanceRepository) AutoClose(ctx context.Context, id string, checkOutTime time.Time, workingHours float64, status attendance.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_out_time = $2,
			working_hours = $3,
			status = $4,
			auto_corrected = TRUE,
			updated_at = NOW()
		WHERE id = $1
		  AND check_out_time IS NULL
		  AND auto_corrected = FALSE
	`

	if _, err := q.Exec(ctx, query, id, checkOutTime, workingHours, status); err != nil {
		return fmt.Errorf("failed to auto-close attendance: %w", err)
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendances a %s", where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
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
		SELECT %s FROM attendances a
		%s
		ORDER BY a.date DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, total, rows.Err()
}

// SummaryForPeriod implements attendance.AttendanceRepository.
func (r *attendanceRepository) SummaryForPeriod(ctx context.Context, employeeID string, from, to time.Time) (attendance.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), status, overtime_hours, ot_status
		FROM attendances
		WHERE employee_id = $1
		  AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return attendance.PeriodSummary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	defer rows.Close()

	summary := attendance.PeriodSummary{EmployeeID: employeeID}
	for rows.Next() {
		var date string
		var status attendance.Status
		var otHours float64
		var otStatus attendance.OTStatus
		if err := rows.Scan(&date, &status, &otHours, &otStatus); err != nil {
			return attendance.PeriodSummary{}, fmt.Errorf("failed to scan attendance summary: %w", err)
		}

		switch status {
		case attendance.StatusPresent, attendance.StatusLate, attendance.StatusHalfDay, attendance.StatusEarlyCheckout:
			summary.PresentDays++
			summary.CreditedDates = append(summary.CreditedDates, date)
		}

		if otStatus == attendance.OTCompleted {
			summary.OvertimeHours += otHours
		}
	}

	return summary, rows.Err()
}
