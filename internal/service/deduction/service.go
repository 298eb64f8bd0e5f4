package deduction

import (
	"context"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/employee"
)

type DeductionServiceImpl struct {
	issuer         *Issuer
	companyService company.CompanyService
	employeeRepo   employee.EmployeeRepository
	balanceRepo    deduction.GraceBalanceRepository
	deductionRepo  deduction.DeductionRepository
}

// Approve implements deduction.DeductionService.
func (s *DeductionServiceImpl) Approve(ctx context.Context, companyID string, deductionID string, actorID string) (deduction.DeductionResponse, error) {
	d, err := s.issuer.Approve(ctx, companyID, deductionID, actorID)
	if err != nil {
		return deduction.DeductionResponse{}, err
	}
	return deduction.NewDeductionResponse(d), nil
}

// Cancel implements deduction.DeductionService.
func (s *DeductionServiceImpl) Cancel(ctx context.Context, companyID string, deductionID string, actorID string, req deduction.CancelDeductionRequest) (deduction.DeductionResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.DeductionResponse{}, err
	}
	d, err := s.issuer.Cancel(ctx, companyID, deductionID, actorID, req.Reason)
	if err != nil {
		return deduction.DeductionResponse{}, err
	}
	return deduction.NewDeductionResponse(d), nil
}

// MarkAppliedToPayroll implements deduction.DeductionService.
func (s *DeductionServiceImpl) MarkAppliedToPayroll(ctx context.Context, companyID string, req deduction.ApplyPayrollRequest) (deduction.ApplyPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return deduction.ApplyPayrollResponse{}, err
	}
	n, err := s.issuer.MarkAppliedToPayroll(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return deduction.ApplyPayrollResponse{}, err
	}
	return deduction.ApplyPayrollResponse{Month: req.Month, Year: req.Year, Applied: n}, nil
}

func NewDeductionService(
	issuer *Issuer,
	companyService company.CompanyService,
	employeeRepo employee.EmployeeRepository,
	balanceRepo deduction.GraceBalanceRepository,
	deductionRepo deduction.DeductionRepository,
) deduction.DeductionService {
	return &DeductionServiceImpl{
		issuer:         issuer,
		companyService: companyService,
		employeeRepo:   employeeRepo,
		balanceRepo:    balanceRepo,
		deductionRepo:  deductionRepo,
	}
}
