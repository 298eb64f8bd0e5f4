package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type policyRepository struct {
	company.PolicyRepository
	cache *expirable.LRU[string, company.DeductionPolicy]
}

// NewPolicyRepository wraps next with an expiring LRU keyed by company id.
// Upserts through the wrapper replace the cached entry; writes that bypass
// it become visible after ttl.
func NewPolicyRepository(next company.PolicyRepository, size int, ttl time.Duration) company.PolicyRepository {
	return &policyRepository{
		PolicyRepository: next,
		cache:            expirable.NewLRU[string, company.DeductionPolicy](size, nil, ttl),
	}
}

// GetDeductionPolicy implements company.PolicyRepository. Misses are not cached.
func (r *policyRepository) GetDeductionPolicy(ctx context.Context, companyID string) (company.DeductionPolicy, error) {
	if p, ok := r.cache.Get(companyID); ok {
		return p, nil
	}

	p, err := r.PolicyRepository.GetDeductionPolicy(ctx, companyID)
	if err != nil {
		return company.DeductionPolicy{}, err
	}
	r.cache.Add(companyID, p)
	return p, nil
}

// UpsertDeductionPolicy implements company.PolicyRepository.
func (r *policyRepository) UpsertDeductionPolicy(ctx context.Context, policy company.DeductionPolicy) (company.DeductionPolicy, error) {
	r.cache.Remove(policy.CompanyID)

	saved, err := r.PolicyRepository.UpsertDeductionPolicy(ctx, policy)
	if err != nil {
		return company.DeductionPolicy{}, err
	}
	r.cache.Add(saved.CompanyID, saved)
	slog.Debug("deduction policy cache refreshed", "company_id", saved.CompanyID)
	return saved, nil
}
