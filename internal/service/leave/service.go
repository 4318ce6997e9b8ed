package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stafftrack/wfm-backend-go/internal/domain/department"
	"github.com/stafftrack/wfm-backend-go/internal/domain/employee"
	"github.com/stafftrack/wfm-backend-go/internal/domain/leave"
	"github.com/stafftrack/wfm-backend-go/internal/domain/payroll"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
	"github.com/stafftrack/wfm-backend-go/internal/repository/postgresql"
	"github.com/stafftrack/wfm-backend-go/internal/service/file"
)

// Monthly accrual credit per employee.
const (
	monthlyCasualAccrual     = 1.0
	monthlyPermissionAccrual = 2.0
)

// attachmentURLExpiry bounds how long a supporting-document link stays valid.
const attachmentURLExpiry = 15 * time.Minute

type LeaveServiceImpl struct {
	db              *database.DB
	applicationRepo leave.ApplicationRepository
	balanceRepo     leave.BalanceRepository
	employeeRepo    employee.EmployeeRepository
	payrollRepo     payroll.PayrollRepository
	timingProvider  department.TimingProvider
	fileService     file.FileService
	logger          *slog.Logger
}

func NewLeaveService(
	db *database.DB,
	applicationRepo leave.ApplicationRepository,
	balanceRepo leave.BalanceRepository,
	employeeRepo employee.EmployeeRepository,
	payrollRepo payroll.PayrollRepository,
	timingProvider department.TimingProvider,
	fileService file.FileService,
	logger *slog.Logger,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		db:              db,
		applicationRepo: applicationRepo,
		balanceRepo:     balanceRepo,
		employeeRepo:    employeeRepo,
		payrollRepo:     payrollRepo,
		timingProvider:  timingProvider,
		fileService:     fileService,
		logger:          logger,
	}
}

// Apply implements leave.LeaveService. Days beyond the current casual balance
// are re-typed unpaid instead of the application being rejected.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	emp, err := s.employeeRepo.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if endDate.Before(startDate) {
		return leave.ApplicationResponse{}, leave.ErrInvalidDateRange
	}

	overlapping, err := s.applicationRepo.HasOverlapping(ctx, emp.ID, startDate, endDate)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if overlapping {
		return leave.ApplicationResponse{}, leave.ErrOverlappingLeave
	}

	leaveType := leave.Type(req.Type)

	// Casual and unpaid leave cannot be booked over days that are already
	// non-working; permission requests are hour-based inside a working day.
	if leaveType != leave.TypePermission {
		dept, err := s.timingProvider.DepartmentFor(ctx, emp.DepartmentID)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
			if dept.IsRestDay(day) {
				return leave.ApplicationResponse{}, leave.ErrLeaveOnRestDay
			}
			holiday, err := s.timingProvider.IsHoliday(ctx, dept.ID, day)
			if err != nil {
				return leave.ApplicationResponse{}, err
			}
			if holiday {
				return leave.ApplicationResponse{}, leave.ErrLeaveOnRestDay
			}
		}
	}

	totalDays := endDate.Sub(startDate).Hours()/24 + 1

	app := leave.Application{
		EmployeeID:      emp.ID,
		Type:            leaveType,
		StartDate:       startDate,
		EndDate:         endDate,
		TotalDays:       totalDays,
		Status:          leave.StatusPendingTL,
		Reason:          req.Reason,
		DeductionAmount: decimal.Zero,
	}

	switch leaveType {
	case leave.TypeCasual:
		balance, err := s.balanceRepo.GetByEmployee(ctx, emp.ID)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		app.CasualDays = totalDays
		if balance.CasualDays < totalDays {
			app.CasualDays = balance.CasualDays
			if app.CasualDays < 0 {
				app.CasualDays = 0
			}
			app.UnpaidDays = totalDays - app.CasualDays
		}
	case leave.TypeUnpaid:
		app.UnpaidDays = totalDays
	case leave.TypePermission:
		balance, err := s.balanceRepo.GetByEmployee(ctx, emp.ID)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		if balance.PermissionHours < req.PermissionHours {
			return leave.ApplicationResponse{}, leave.ErrInsufficientPermission
		}
		app.PermissionHours = req.PermissionHours
	}

	if req.Attachment != nil && req.AttachmentHeader != nil {
		path, err := s.fileService.UploadLeaveAttachment(ctx, emp.ID, req.Attachment, req.AttachmentHeader.Filename)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		app.AttachmentURL = &path
	}

	saved, err := s.applicationRepo.Create(ctx, app)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	return s.toResponse(ctx, saved), nil
}

// Approve implements leave.LeaveService. TL approval forwards the application
// to HR; HR approval finalizes it, deducting balance and fixing the payroll
// deduction inside one transaction.
func (s *LeaveServiceImpl) Approve(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if app.Status.IsTerminal() {
		return leave.ApplicationResponse{}, leave.ErrAlreadyProcessed
	}

	now := time.Now().UTC()

	switch leave.ApprovalLevel(req.Level) {
	case leave.LevelTL:
		if app.Status != leave.StatusPendingTL {
			return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
		}
		expected := app.Status
		app.Status = leave.StatusPendingHR
		app.ApprovedByTL = &req.ApproverID
		app.ApprovedByTLAt = &now
		if err := s.applicationRepo.UpdateStatus(ctx, app, expected); err != nil {
			return leave.ApplicationResponse{}, err
		}

	case leave.LevelHR:
		if app.Status != leave.StatusPendingHR {
			return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
		}

		if app.UnpaidDays > 0 {
			structure, err := s.payrollRepo.GetActiveStructure(ctx, app.EmployeeID, app.StartDate)
			if err != nil {
				return leave.ApplicationResponse{}, err
			}
			monthDays := daysInMonth(app.StartDate)
			app.DeductionAmount = structure.PerDaySalary(monthDays).
				Mul(decimal.NewFromFloat(app.UnpaidDays)).
				Round(2)
		}
		app.AffectsPayroll = app.DeductionAmount.IsPositive()

		expected := app.Status
		app.Status = leave.StatusApproved
		app.ApprovedByHR = &req.ApproverID
		app.ApprovedByHRAt = &now

		err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			if err := s.applicationRepo.UpdateStatus(txCtx, app, expected); err != nil {
				return err
			}
			if app.CasualDays > 0 || app.PermissionHours > 0 {
				return s.balanceRepo.AdjustBalance(txCtx, app.EmployeeID, -app.CasualDays, -app.PermissionHours)
			}
			return nil
		})
		if err != nil {
			return leave.ApplicationResponse{}, err
		}

	default:
		return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
	}

	return s.toResponse(ctx, app), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if app.Status.IsTerminal() {
		return leave.ApplicationResponse{}, leave.ErrAlreadyProcessed
	}

	expected := app.Status

	switch leave.ApprovalLevel(req.Level) {
	case leave.LevelTL:
		if app.Status != leave.StatusPendingTL {
			return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
		}
		app.Status = leave.StatusRejectedByTL
	case leave.LevelHR:
		if app.Status != leave.StatusPendingHR {
			return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
		}
		app.Status = leave.StatusRejectedByHR
	default:
		return leave.ApplicationResponse{}, leave.ErrWrongApprovalLevel
	}

	if req.Reason != "" {
		app.RejectionReason = &req.Reason
	}

	if err := s.applicationRepo.UpdateStatus(ctx, app, expected); err != nil {
		return leave.ApplicationResponse{}, err
	}

	return s.toResponse(ctx, app), nil
}

// Cancel implements leave.LeaveService. Only the owner may cancel, and only
// while the application is still pending.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, applicationID, employeeID string) (leave.ApplicationResponse, error) {
	emp, err := s.employeeRepo.Resolve(ctx, employeeID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if app.EmployeeID != emp.ID {
		return leave.ApplicationResponse{}, leave.ErrApplicationNotFound
	}
	if app.Status != leave.StatusPendingTL && app.Status != leave.StatusPendingHR {
		return leave.ApplicationResponse{}, leave.ErrCancelAfterDecision
	}

	expected := app.Status
	app.Status = leave.StatusCancelled

	if err := s.applicationRepo.UpdateStatus(ctx, app, expected); err != nil {
		return leave.ApplicationResponse{}, err
	}

	// A cancelled application no longer needs its supporting document.
	if app.AttachmentURL != nil {
		if err := s.fileService.DeleteFile(ctx, *app.AttachmentURL); err != nil {
			s.logger.Warn("failed to delete leave attachment",
				"application_id", app.ID, "error", err)
		}
	}

	return toApplicationResponse(app), nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	emp, err := s.employeeRepo.Resolve(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := s.balanceRepo.GetByEmployee(ctx, emp.ID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.BalanceResponse{
		EmployeeID:      balance.EmployeeID,
		CasualDays:      balance.CasualDays,
		PermissionHours: balance.PermissionHours,
	}, nil
}

// ListMy implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMy(ctx context.Context, filter leave.Filter) (leave.ListApplicationResponse, error) {
	emp, err := s.employeeRepo.Resolve(ctx, filter.EmployeeID)
	if err != nil {
		return leave.ListApplicationResponse{}, err
	}
	filter.EmployeeID = emp.ID

	return s.list(ctx, filter)
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.Filter) (leave.ListApplicationResponse, error) {
	if filter.EmployeeID != "" {
		emp, err := s.employeeRepo.Resolve(ctx, filter.EmployeeID)
		if err != nil {
			return leave.ListApplicationResponse{}, err
		}
		filter.EmployeeID = emp.ID
	}

	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.Filter) (leave.ListApplicationResponse, error) {
	apps, total, err := s.applicationRepo.List(ctx, filter)
	if err != nil {
		return leave.ListApplicationResponse{}, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	resp := leave.ListApplicationResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, app := range apps {
		resp.Applications = append(resp.Applications, s.toResponse(ctx, app))
	}

	return resp, nil
}

// Accrue credits every active employee with the monthly allotment. The
// accrual entry's unique key makes re-runs no-ops, so the job can fire more
// than once per month safely.
func (s *LeaveServiceImpl) Accrue(ctx context.Context) error {
	employees, err := s.employeeRepo.ListActive(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	now := time.Now().UTC()
	var failed int
	for _, emp := range employees {
		err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			inserted, err := s.balanceRepo.RecordAccrual(txCtx, leave.AccrualEntry{
				EmployeeID:      emp.ID,
				Year:            now.Year(),
				Month:           int(now.Month()),
				CasualDays:      monthlyCasualAccrual,
				PermissionHours: monthlyPermissionAccrual,
			})
			if err != nil {
				return err
			}
			if !inserted {
				return nil
			}
			return s.balanceRepo.AdjustBalance(txCtx, emp.ID, monthlyCasualAccrual, monthlyPermissionAccrual)
		})
		if err != nil {
			failed++
			s.logger.Warn("leave accrual failed for employee",
				slog.String("employee_id", emp.ID),
				slog.Any("error", err),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("leave accrual failed for %d of %d employees", failed, len(employees))
	}
	return nil
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// toResponse maps an application and resolves its attachment path into a
// short-lived download link. Supporting documents are served through links,
// never raw storage paths.
func (s *LeaveServiceImpl) toResponse(ctx context.Context, app leave.Application) leave.ApplicationResponse {
	resp := toApplicationResponse(app)
	if app.AttachmentURL != nil {
		url, err := s.fileService.GetFileURL(ctx, *app.AttachmentURL, attachmentURLExpiry)
		if err != nil {
			s.logger.Warn("failed to resolve leave attachment URL",
				"application_id", app.ID, "error", err)
		} else {
			resp.AttachmentURL = &url
		}
	}
	return resp
}

func toApplicationResponse(app leave.Application) leave.ApplicationResponse {
	resp := leave.ApplicationResponse{
		ID:              app.ID,
		EmployeeID:      app.EmployeeID,
		Type:            string(app.Type),
		StartDate:       app.StartDate.Format("2006-01-02"),
		EndDate:         app.EndDate.Format("2006-01-02"),
		TotalDays:       app.TotalDays,
		CasualDays:      app.CasualDays,
		UnpaidDays:      app.UnpaidDays,
		PermissionHours: app.PermissionHours,
		Status:          string(app.Status),
		Reason:          app.Reason,
		RejectionReason: app.RejectionReason,
		AffectsPayroll:  app.AffectsPayroll,
		DeductionAmount: app.DeductionAmount.StringFixed(2),
	}
	if !app.CreatedAt.IsZero() {
		resp.CreatedAt = app.CreatedAt.Format(time.RFC3339)
	}
	if !app.UpdatedAt.IsZero() {
		resp.UpdatedAt = app.UpdatedAt.Format(time.RFC3339)
	}
	if app.EmployeeName != nil {
		resp.EmployeeName = *app.EmployeeName
	}
	return resp
}
