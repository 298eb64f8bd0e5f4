package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	deductionHandler DeductionHandler,
	companyHandler CompanyHandler,
	employeeHandler EmployeeHandler,
	scheduleHandler ScheduleHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-deduction"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-in", attendanceHandler.CheckIn)
			r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-out", attendanceHandler.CheckOut)
			r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/daily", attendanceHandler.GetDaily)
		})

		r.Route("/deductions", func(r chi.Router) {
			// Payroll runs as the system role, which is not a manager.
			r.With(middleware.RequirePermission(user.PermissionDeductionPayroll)).Post("/payroll-applied", deductionHandler.PayrollApplied)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.With(middleware.RequirePermission(user.PermissionDeductionViewAll)).Get("/report", deductionHandler.Report)
				r.With(middleware.RequirePermission(user.PermissionDeductionViewAll)).Get("/report/export", deductionHandler.ExportReport)
				r.With(middleware.RequirePermission(user.PermissionDeductionViewAll)).Get("/stats", deductionHandler.Stats)
				r.With(middleware.RequirePermission(user.PermissionDeductionApprove)).Post("/{id}/approve", deductionHandler.Approve)
				r.With(middleware.RequirePermission(user.PermissionDeductionCancel)).Post("/{id}/cancel", deductionHandler.Cancel)

				r.Route("/policy", func(r chi.Router) {
					r.Get("/", companyHandler.GetPolicy)
					r.With(middleware.RequirePermission(user.PermissionDeductionPolicy)).Put("/", companyHandler.UpdatePolicy)
				})
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(middleware.RequireManager)
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/{id}", employeeHandler.GetByID)
			r.With(middleware.RequirePermission(user.PermissionDeductionPolicy)).Put("/{id}/deduction-overrides", employeeHandler.UpdateOverrides)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Use(middleware.RequireManager)
			r.Post("/", scheduleHandler.CreateShift)
			r.Get("/{id}", scheduleHandler.GetShift)
			r.Post("/assignments", scheduleHandler.AssignShift)
		})
	})
	return r
}
