package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stafftrack/wfm-backend-go/internal/config"
	appHTTP "github.com/stafftrack/wfm-backend-go/internal/handler/http"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/cron"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/database"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/geocode"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/jwt"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/storage"
	"github.com/stafftrack/wfm-backend-go/internal/repository/postgresql"
	attendanceService "github.com/stafftrack/wfm-backend-go/internal/service/attendance"
	departmentService "github.com/stafftrack/wfm-backend-go/internal/service/department"
	"github.com/stafftrack/wfm-backend-go/internal/service/file"
	leaveService "github.com/stafftrack/wfm-backend-go/internal/service/leave"
	payrollService "github.com/stafftrack/wfm-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "wfm-backend"),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveAppRepo := postgresql.NewLeaveApplicationRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	advanceRepo := postgresql.NewAdvanceRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	var geocoder *geocode.Client
	if cfg.Geocode.BaseURL != "" {
		geocoder = geocode.NewClient(cfg.Geocode.BaseURL)
	}

	fileSvc := file.NewFileService(fileStorage)
	timingProvider := departmentService.NewTimingProvider(departmentRepo, cfg.Attendance.TimingCacheTTL)
	departmentSvc := departmentService.NewDepartmentService(departmentRepo, timingProvider)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		timingProvider,
		fileSvc,
		geocoder,
		logger,
	)
	leaveSvc := leaveService.NewLeaveService(
		db,
		leaveAppRepo,
		leaveBalanceRepo,
		employeeRepo,
		payrollRepo,
		timingProvider,
		fileSvc,
		logger,
	)
	payrollSvc := payrollService.NewPayrollService(
		payrollRepo,
		employeeRepo,
		attendanceRepo,
		leaveAppRepo,
		advanceRepo,
		cfg.Payroll,
		logger,
	)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("auto-checkout-sweep", cfg.Attendance.SweepInterval, func(ctx context.Context) error {
		return attendanceSvc.Sweep(ctx, cfg.Attendance.AutoCheckoutGrace)
	})
	scheduler.AddJob("leave-accrual", 24*time.Hour, leaveSvc.Accrue)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	departmentHandler := appHTTP.NewDepartmentHandler(departmentSvc)

	router := appHTTP.NewRouter(
		jwtService,
		attendanceHandler,
		leaveHandler,
		payrollHandler,
		departmentHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
