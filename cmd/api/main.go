package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/config"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-deduction-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-deduction-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-deduction-go/internal/repository/cache"
	"github.com/cmlabs-hris/hris-deduction-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-deduction-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-deduction-go/internal/service/attendance"
	serviceCompany "github.com/cmlabs-hris/hris-deduction-go/internal/service/company"
	deductionService "github.com/cmlabs-hris/hris-deduction-go/internal/service/deduction"
	employeeService "github.com/cmlabs-hris/hris-deduction-go/internal/service/employee"
	scheduleService "github.com/cmlabs-hris/hris-deduction-go/internal/service/schedule"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	tx          database.Transactor
	companies   company.CompanyRepository
	policies    company.PolicyRepository
	employees   employee.EmployeeRepository
	shifts      schedule.ShiftRepository
	attendances attendance.AttendanceRepository
	balances    deduction.GraceBalanceRepository
	deductions  deduction.DeductionRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error opening storage", "driver", cfg.App.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	policyRepo := repos.policies
	if cfg.Engine.PolicyCacheSize > 0 {
		policyRepo = cache.NewPolicyRepository(repos.policies, cfg.Engine.PolicyCacheSize, cfg.Engine.PolicyCacheTTL)
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		slog.Error("Error connecting to redis", "address", cfg.Redis.Address, "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	companyService := serviceCompany.NewCompanyService(repos.companies, policyRepo)
	resolver := scheduleService.NewShiftResolver(repos.shifts)
	ledger := deductionService.NewLedger(repos.balances)
	issuer := deductionService.NewIssuer(repos.tx, locker, repos.deductions, ledger)
	deductionSvc := deductionService.NewDeductionService(issuer, companyService, repos.employees, repos.balances, repos.deductions)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		locker,
		repos.attendances,
		repos.employees,
		companyService,
		resolver,
		ledger,
		issuer,
		cfg.Engine.OpenSessionLookback,
	)

	if cfg.App.StorageDriver == config.StorageMemory {
		if err := seedDemo(ctx, cfg, repos, JWTService); err != nil {
			slog.Error("Error seeding demo data", "error", err)
			os.Exit(1)
		}
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Env: cfg.App.Env, AllowedOrigins: cfg.App.AllowedOrigins},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewDeductionHandler(deductionSvc),
		appHTTP.NewCompanyHandler(companyService),
		appHTTP.NewEmployeeHandler(employeeService.NewEmployeeService(repos.employees, repos.companies)),
		appHTTP.NewScheduleHandler(scheduleService.NewScheduleService(repos.tx, repos.shifts, repos.companies, repos.employees)),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Server running", "address", "http://localhost"+srv.Addr, "storage", cfg.App.StorageDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.App.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		return repositories{
			tx:          store,
			companies:   memory.NewCompanyRepository(store),
			policies:    memory.NewPolicyRepository(store),
			employees:   memory.NewEmployeeRepository(store),
			shifts:      memory.NewShiftRepository(store),
			attendances: memory.NewAttendanceRepository(store),
			balances:    memory.NewGraceBalanceRepository(store),
			deductions:  memory.NewDeductionRepository(store),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return repositories{}, err
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, err
	}
	return repositories{
		tx:          postgresql.NewTransactor(db),
		companies:   postgresql.NewCompanyRepository(db),
		policies:    postgresql.NewPolicyRepository(db),
		employees:   postgresql.NewEmployeeRepository(db),
		shifts:      postgresql.NewShiftRepository(db),
		attendances: postgresql.NewAttendanceRepository(db),
		balances:    postgresql.NewGraceBalanceRepository(db),
		deductions:  postgresql.NewDeductionRepository(db),
		close:       db.Close,
	}, nil
}

// newLocker returns a Redis-backed locker when several API processes share the database.
func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	if !cfg.Redis.Enabled {
		return lock.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	slog.Info("Using redis locks", "address", cfg.Redis.Address)
	return lock.NewRedisLocker(rdb, cfg.Engine.LockTTL, cfg.Engine.LockWait), func() { rdb.Close() }, nil
}

func seedDemo(ctx context.Context, cfg *config.Config, repos repositories, JWTService jwt.Service) error {
	ids, err := fixtures.SeedDemoCompany(ctx, repos.tx, fixtures.Repositories{
		Companies: repos.companies,
		Policies:  repos.policies,
		Employees: repos.employees,
		Shifts:    repos.shifts,
	}, "Demo Company", "Asia/Jakarta", time.Now(), 30)
	if err != nil {
		return err
	}
	slog.Info("Seeded demo company", "company_id", ids.CompanyID, "employees", ids.EmployeeIDs)

	if cfg.App.Env != "development" {
		return nil
	}
	owner, _, err := JWTService.GenerateAccessToken(jwt.AccessClaims{UserID: uuid.Must(uuid.NewV7()).String(), CompanyID: ids.CompanyID, Role: user.RoleOwner})
	if err != nil {
		return err
	}
	employeeID := ids.EmployeeIDs["EMP-001"]
	staff, _, err := JWTService.GenerateAccessToken(jwt.AccessClaims{UserID: employeeID, EmployeeID: &employeeID, CompanyID: ids.CompanyID, Role: user.RoleEmployee})
	if err != nil {
		return err
	}
	slog.Info("Demo access tokens", "owner", owner, "employee", staff)
	return nil
}
