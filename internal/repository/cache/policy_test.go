package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-deduction-go/internal/domain/company"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPolicyRepo struct {
	policies map[string]company.DeductionPolicy
	gets     int
}

func (c *countingPolicyRepo) GetDeductionPolicy(ctx context.Context, companyID string) (company.DeductionPolicy, error) {
	c.gets++
	p, ok := c.policies[companyID]
	if !ok {
		return company.DeductionPolicy{}, company.ErrPolicyNotFound
	}
	return p, nil
}

func (c *countingPolicyRepo) UpsertDeductionPolicy(ctx context.Context, p company.DeductionPolicy) (company.DeductionPolicy, error) {
	c.policies[p.CompanyID] = p
	return p, nil
}

func TestPolicyRepository_CachesHits(t *testing.T) {
	ctx := context.Background()
	next := &countingPolicyRepo{policies: map[string]company.DeductionPolicy{
		"c1": company.DefaultDeductionPolicy("c1"),
	}}
	repo := NewPolicyRepository(next, 10, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := repo.GetDeductionPolicy(ctx, "c1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, next.gets)
}

func TestPolicyRepository_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingPolicyRepo{policies: map[string]company.DeductionPolicy{}}
	repo := NewPolicyRepository(next, 10, time.Minute)

	_, err := repo.GetDeductionPolicy(ctx, "c1")
	assert.ErrorIs(t, err, company.ErrPolicyNotFound)
	_, err = repo.GetDeductionPolicy(ctx, "c1")
	assert.ErrorIs(t, err, company.ErrPolicyNotFound)
	assert.Equal(t, 2, next.gets)
}

func TestPolicyRepository_UpsertReplacesEntry(t *testing.T) {
	ctx := context.Background()
	next := &countingPolicyRepo{policies: map[string]company.DeductionPolicy{
		"c1": company.DefaultDeductionPolicy("c1"),
	}}
	repo := NewPolicyRepository(next, 10, time.Minute)

	_, err := repo.GetDeductionPolicy(ctx, "c1")
	require.NoError(t, err)

	updated := company.DefaultDeductionPolicy("c1")
	updated.LateDeductionRate = decimal.NewFromInt(500)
	_, err = repo.UpsertDeductionPolicy(ctx, updated)
	require.NoError(t, err)

	got, err := repo.GetDeductionPolicy(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, got.LateDeductionRate.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, next.gets)
}

func TestPolicyRepository_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	next := &countingPolicyRepo{policies: map[string]company.DeductionPolicy{
		"c1": company.DefaultDeductionPolicy("c1"),
	}}
	repo := NewPolicyRepository(next, 10, 20*time.Millisecond)

	_, err := repo.GetDeductionPolicy(ctx, "c1")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = repo.GetDeductionPolicy(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.gets)
}
