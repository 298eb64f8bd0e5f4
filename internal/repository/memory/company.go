package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
)

type companyRepository struct {
	s *Store
}

func NewCompanyRepository(s *Store) company.CompanyRepository {
	return &companyRepository{s: s}
}

func (r *companyRepository) Create(ctx context.Context, c company.Company) (company.Company, error) {
	err := r.s.write(ctx, func(t *tables) error {
		if c.ID == "" {
			c.ID = newID()
		}
		now := r.s.now().UTC()
		c.CreatedAt, c.UpdatedAt = now, now
		t.companies[c.ID] = c
		return nil
	})
	return c, err
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	var (
		c  company.Company
		ok bool
	)
	r.s.read(func(t *tables) { c, ok = t.companies[id] })
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

type policyRepository struct {
	s *Store
}

func NewPolicyRepository(s *Store) company.PolicyRepository {
	return &policyRepository{s: s}
}

func (r *policyRepository) GetDeductionPolicy(ctx context.Context, companyID string) (company.DeductionPolicy, error) {
	var (
		p  company.DeductionPolicy
		ok bool
	)
	r.s.read(func(t *tables) { p, ok = t.policies[companyID] })
	if !ok {
		return company.DeductionPolicy{}, company.ErrPolicyNotFound
	}
	p.Tiers = slices.Clone(p.Tiers)
	return p, nil
}

func (r *policyRepository) UpsertDeductionPolicy(ctx context.Context, p company.DeductionPolicy) (company.DeductionPolicy, error) {
	err := r.s.write(ctx, func(t *tables) error {
		now := r.s.now().UTC()
		if existing, ok := t.policies[p.CompanyID]; ok {
			p.CreatedAt = existing.CreatedAt
		} else {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		p.Tiers = slices.Clone(p.Tiers)
		t.policies[p.CompanyID] = p
		return nil
	})
	return p, err
}
