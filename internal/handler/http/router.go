package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stafftrack/wfm-backend-go/internal/handler/http/middleware"
	"github.com/stafftrack/wfm-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
	departmentHandler DepartmentHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "wfm-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/overtime/start", attendanceHandler.StartOvertime)
				r.Post("/overtime/end", attendanceHandler.EndOvertime)
				r.Get("/my", attendanceHandler.GetMyAttendance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireTeamLead)
					r.Get("/", attendanceHandler.List)
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", leaveHandler.Apply)
				r.Get("/my", leaveHandler.ListMy)
				r.Get("/balance", leaveHandler.GetBalance)
				r.Post("/{id}/cancel", leaveHandler.Cancel)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireTeamLead)
					r.Get("/", leaveHandler.List)
					r.Post("/{id}/approve", leaveHandler.Approve)
					r.Post("/{id}/reject", leaveHandler.Reject)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireHR)

				r.Post("/process", payrollHandler.Process)
				r.Get("/records", payrollHandler.ListRecords)
				r.Get("/records/{id}", payrollHandler.GetRecord)
				r.Put("/records/{id}", payrollHandler.UpdateRecord)
				r.Post("/records/{id}/approve", payrollHandler.ApproveRecord)
				r.Post("/records/{id}/pay", payrollHandler.MarkRecordPaid)

				r.Get("/settings", payrollHandler.GetSettings)

				// Statutory rates are admin territory, not HR's.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/settings", payrollHandler.UpdateSettings)
				})

				r.Get("/structures/{employeeID}", payrollHandler.GetStructures)
				r.Put("/structures/{employeeID}", payrollHandler.UpsertStructure)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", departmentHandler.List)
				r.Get("/{id}", departmentHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Put("/{id}/timing", departmentHandler.UpdateTiming)
				})
			})
		})
	})

	return r
}
