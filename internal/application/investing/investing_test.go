package investing

import (
	"testing"
	"time"

	"charity-fund/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now     = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
)

func project(t *testing.T, full, invested int64) *domain.CharityProject {
	t.Helper()
	f, err := domain.NewFunding(full, invested, created)
	require.NoError(t, err)
	return &domain.CharityProject{ID: uuid.New(), Name: "p-" + uuid.NewString()[:8], Funding: f}
}

func donation(t *testing.T, full, invested int64, at time.Time) *domain.Donation {
	t.Helper()
	f, err := domain.NewFunding(full, invested, at)
	require.NoError(t, err)
	return &domain.Donation{ID: uuid.New(), Funding: f}
}

func TestInvest_ExactMatchClosesBoth(t *testing.T) {
	target := project(t, 1000, 0)
	src := donation(t, 1000, 0, created)

	modified, err := Invest(target, []*domain.Donation{src}, now)
	require.NoError(t, err)

	assert.Equal(t, []*domain.Donation{src}, modified)
	assert.True(t, target.FullyInvested)
	assert.Equal(t, int64(1000), target.InvestedAmount)
	assert.Equal(t, now, *target.CloseDate)
	assert.True(t, src.FullyInvested)
	assert.Equal(t, now, *src.CloseDate)
}

func TestInvest_SplitsAcrossSourcesOldestFirst(t *testing.T) {
	target := project(t, 1000, 0)
	a := donation(t, 400, 0, created)
	b := donation(t, 1000, 0, created.Add(time.Hour))

	transfers, err := Distribute(target, []*domain.Donation{a, b}, now)
	require.NoError(t, err)

	require.Len(t, transfers, 2)
	assert.Equal(t, a, transfers[0].Source)
	assert.Equal(t, int64(400), transfers[0].Amount)
	assert.Equal(t, b, transfers[1].Source)
	assert.Equal(t, int64(600), transfers[1].Amount)

	assert.True(t, target.FullyInvested)
	assert.True(t, a.FullyInvested)
	assert.False(t, b.FullyInvested)
	assert.Equal(t, int64(600), b.InvestedAmount)
	assert.Nil(t, b.CloseDate)
}

func TestInvest_EmptyBacklogIsNoop(t *testing.T) {
	target := project(t, 500, 0)
	before := target.Funding

	modified, err := Invest(target, []*domain.Donation{}, now)
	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Equal(t, before, target.Funding)
}

func TestInvest_FullTargetIsNoop(t *testing.T) {
	target := donation(t, 300, 300, created)
	p := project(t, 1000, 0)
	before := p.Funding

	modified, err := Invest(target, []*domain.CharityProject{p}, now)
	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Equal(t, before, p.Funding)
	assert.Equal(t, created, *target.CloseDate)
}

func TestInvest_FIFOLeavesLaterSourcesUntouched(t *testing.T) {
	target := project(t, 100, 0)
	s1 := donation(t, 100, 0, created)
	s2 := donation(t, 100, 0, created.Add(time.Minute))
	s3 := donation(t, 100, 0, created.Add(2*time.Minute))

	modified, err := Invest(target, []*domain.Donation{s1, s2, s3}, now)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Donation{s1}, modified)
	assert.Zero(t, s2.InvestedAmount)
	assert.Zero(t, s3.InvestedAmount)
}

func TestInvest_StopsOnceTargetFullEvenWithLeftoverCapacity(t *testing.T) {
	target := donation(t, 250, 0, now)
	p1 := project(t, 100, 0)
	p2 := project(t, 1000, 0)
	p3 := project(t, 1000, 0)

	modified, err := Invest(target, []*domain.CharityProject{p1, p2, p3}, now)
	require.NoError(t, err)
	assert.Equal(t, []*domain.CharityProject{p1, p2}, modified)
	assert.Equal(t, int64(150), p2.InvestedAmount)
	assert.Equal(t, int64(850), p2.Remaining())
	assert.Zero(t, p3.InvestedAmount)
	assert.True(t, target.FullyInvested)
}

func TestInvest_SkipsExhaustedSource(t *testing.T) {
	target := project(t, 100, 0)
	closed := donation(t, 50, 50, created)
	open := donation(t, 100, 0, created.Add(time.Minute))

	modified, err := Invest(target, []*domain.Donation{closed, open}, now)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Donation{open}, modified)
	assert.True(t, target.FullyInvested)
	assert.Equal(t, created, *closed.CloseDate)
}

func TestDistribute_ConservesMoneyAndInvariants(t *testing.T) {
	sizes := [][]int64{
		{700, 100, 250, 50, 900},
		{10, 10, 10},
		{1, 999, 1, 1},
		{5000, 5000},
	}
	for _, amounts := range sizes {
		target := project(t, 1200, 0)
		var sources []*domain.Donation
		var beforeSources int64
		for i, a := range amounts {
			d := donation(t, a, 0, created.Add(time.Duration(i)*time.Minute))
			sources = append(sources, d)
		}

		transfers, err := Distribute(target, sources, now)
		require.NoError(t, err)

		var afterSources int64
		for _, s := range sources {
			afterSources += s.InvestedAmount
			assert.NoError(t, s.Validate())
		}
		assert.NoError(t, target.Validate())

		moved := Moved(transfers)
		assert.Equal(t, target.InvestedAmount, moved)
		assert.Equal(t, afterSources-beforeSources, moved)
	}
}
