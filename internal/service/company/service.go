package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
	company.PolicyRepository
}

// GetCompany implements company.CompanyService.
func (c *CompanyServiceImpl) GetCompany(ctx context.Context, companyID string) (company.Company, error) {
	return c.CompanyRepository.GetByID(ctx, companyID)
}

// GetPolicy implements company.CompanyService.
func (c *CompanyServiceImpl) GetPolicy(ctx context.Context, companyID string) (company.DeductionPolicy, error) {
	policy, err := c.PolicyRepository.GetDeductionPolicy(ctx, companyID)
	if err != nil {
		if errors.Is(err, company.ErrPolicyNotFound) {
			return company.DefaultDeductionPolicy(companyID), nil
		}
		return company.DeductionPolicy{}, fmt.Errorf("failed to get deduction policy: %w", err)
	}
	return policy, nil
}

// UpdatePolicy implements company.CompanyService.
func (c *CompanyServiceImpl) UpdatePolicy(ctx context.Context, companyID string, req company.UpdateDeductionPolicyRequest) (company.DeductionPolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.DeductionPolicyResponse{}, err
	}

	if _, err := c.CompanyRepository.GetByID(ctx, companyID); err != nil {
		return company.DeductionPolicyResponse{}, err
	}

	policy, err := c.GetPolicy(ctx, companyID)
	if err != nil {
		return company.DeductionPolicyResponse{}, err
	}
	req.ApplyTo(&policy)
	if err := policy.Validate(); err != nil {
		return company.DeductionPolicyResponse{}, err
	}

	saved, err := c.PolicyRepository.UpsertDeductionPolicy(ctx, policy)
	if err != nil {
		return company.DeductionPolicyResponse{}, fmt.Errorf("failed to save deduction policy: %w", err)
	}

	slog.Info("deduction policy updated", "company_id", companyID)
	return company.NewDeductionPolicyResponse(saved), nil
}

func NewCompanyService(companyRepo company.CompanyRepository, policyRepo company.PolicyRepository) company.CompanyService {
	return &CompanyServiceImpl{
		CompanyRepository: companyRepo,
		PolicyRepository:  policyRepo,
	}
}
