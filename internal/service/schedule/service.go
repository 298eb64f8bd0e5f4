package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-deduction-go/internal/pkg/database"
)

type shiftResolverImpl struct {
	shiftRepo schedule.ShiftRepository
}

// Resolve implements schedule.ShiftResolver.
// date must already be midnight in the company timezone.
func (r *shiftResolverImpl) Resolve(ctx context.Context, companyID string, employeeID string, date time.Time) (schedule.ResolvedShift, error) {
	assigned, err := r.shiftRepo.GetAssignment(ctx, companyID, employeeID, date)
	if err != nil {
		return schedule.ResolvedShift{}, fmt.Errorf("failed to get shift assignment: %w", err)
	}

	resolved := schedule.WithDefault(assigned)
	if resolved.UsedDefault {
		slog.Debug("no shift assigned, using default schedule",
			"company_id", companyID,
			"employee_id", employeeID,
			"date", date.Format("2006-01-02"),
		)
	}
	return resolved, nil
}

func NewShiftResolver(shiftRepo schedule.ShiftRepository) schedule.ShiftResolver {
	return &shiftResolverImpl{shiftRepo: shiftRepo}
}

type scheduleServiceImpl struct {
	tx           database.Transactor
	shiftRepo    schedule.ShiftRepository
	companyRepo  company.CompanyRepository
	employeeRepo employee.EmployeeRepository
}

func NewScheduleService(
	tx database.Transactor,
	shiftRepo schedule.ShiftRepository,
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		tx:           tx,
		shiftRepo:    shiftRepo,
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
	}
}

// CreateShift implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateShift(ctx context.Context, companyID string, req schedule.CreateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}

	start, err := schedule.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}
	end, err := schedule.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	shift, err := schedule.NewShift(start, end, req.BreakDurationMinutes, req.IsNextDayCheckout)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}
	shift.CompanyID = companyID
	shift.Name = strings.TrimSpace(req.Name)

	created, err := s.shiftRepo.CreateShift(ctx, shift)
	if err != nil {
		return schedule.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return schedule.NewShiftResponse(created), nil
}

// GetShift implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetShift(ctx context.Context, companyID string, id string) (schedule.ShiftResponse, error) {
	shift, err := s.shiftRepo.GetShiftByID(ctx, id, companyID)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}
	return schedule.NewShiftResponse(shift), nil
}

// AssignShift implements schedule.ScheduleService.
func (s *scheduleServiceImpl) AssignShift(ctx context.Context, companyID string, req schedule.AssignShiftRequest) (schedule.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.AssignmentResponse{}, err
	}

	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return schedule.AssignmentResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return schedule.AssignmentResponse{}, err
	}

	dates := req.Dates(comp.Location())
	resp := schedule.AssignmentResponse{
		EmployeeID: req.EmployeeID,
		ShiftID:    req.ShiftID,
		Dates:      make([]string, 0, len(dates)),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, date := range dates {
			if _, err := s.shiftRepo.Assign(ctx, schedule.ShiftAssignment{
				CompanyID:  companyID,
				EmployeeID: req.EmployeeID,
				Date:       date,
				ShiftID:    req.ShiftID,
			}); err != nil {
				return fmt.Errorf("assign %s: %w", date.Format("2006-01-02"), err)
			}
			resp.Dates = append(resp.Dates, date.Format("2006-01-02"))
		}
		return nil
	})
	if err != nil {
		return schedule.AssignmentResponse{}, err
	}

	slog.Info("shift assigned", "company_id", companyID, "employee_id", req.EmployeeID, "shift_id", req.ShiftID, "days", len(dates))
	return resp, nil
}
