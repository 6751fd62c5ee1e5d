package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

func TestConfiguration_GetCurrentCaches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	stored := &domain.Configuration{ID: 1, DailyFineRate: 0.5}
	repo.On("GetLatest", ctx).Return(stored, nil).Once()

	first, err := svc.GetCurrent(ctx)
	assert.NoError(t, err)
	second, err := svc.GetCurrent(ctx)
	assert.NoError(t, err)

	// The second call must be served from cache: GetLatest was set up Once.
	assert.Same(t, first, second)
	repo.AssertExpectations(t)
}

func TestConfiguration_InvalidateCacheForcesReload(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	repo.On("GetLatest", ctx).Return(&domain.Configuration{ID: 1}, nil).Twice()

	_, err := svc.GetCurrent(ctx)
	assert.NoError(t, err)

	svc.InvalidateCache()

	_, err = svc.GetCurrent(ctx)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestConfiguration_CreatesDefaultWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	repo.On("GetLatest", ctx).Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(cfg *domain.Configuration) bool {
		return cfg.DailyFineRate == 0.5 &&
			cfg.FineCeilingCents == 100000 &&
			cfg.MaxItemsPerLoan == 5 &&
			cfg.MaxActiveLoansPerClient == 3 &&
			cfg.MaxRentalDays == 30
	})).Return(nil).Once()

	cfg, err := svc.GetCurrent(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(7), cfg.VIPBonusDays)
	repo.AssertExpectations(t)
}

func TestConfiguration_UpdateValidates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	bad := domain.DefaultConfiguration()
	bad.MinRentalDays = 10
	bad.MaxRentalDays = 5

	_, err := svc.Update(ctx, bad, "7")
	assert.True(t, IsBusinessRule(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestConfiguration_UpdateStampsActorAndInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	// Prime the cache so the update's invalidation is observable.
	repo.On("GetLatest", ctx).Return(&domain.Configuration{ID: 1}, nil).Twice()
	_, err := svc.GetCurrent(ctx)
	assert.NoError(t, err)

	cfg := domain.DefaultConfiguration()
	cfg.ID = 1
	repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Configuration) bool {
		return c.UpdatedBy == "7"
	})).Return(nil).Once()

	_, err = svc.Update(ctx, cfg, "7")
	assert.NoError(t, err)

	// Cache was invalidated: the next read goes back to the repository.
	_, err = svc.GetCurrent(ctx)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestConfiguration_UpdateResolvesMissingID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	// A body without an id targets the live row, not row 0.
	repo.On("GetLatest", ctx).Return(&domain.Configuration{ID: 4}, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Configuration) bool {
		return c.ID == 4
	})).Return(nil).Once()

	cfg := domain.DefaultConfiguration()
	cfg.ID = 0
	updated, err := svc.Update(ctx, cfg, "7")
	assert.NoError(t, err)
	assert.Equal(t, int32(4), updated.ID)
	repo.AssertExpectations(t)
}

func TestConfiguration_UpdateUnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConfigRepo)
	svc := NewConfigurationService(repo)

	cfg := domain.DefaultConfiguration()
	cfg.ID = 99
	repo.On("Update", ctx, mock.Anything).Return(repository.ErrNotFound).Once()

	_, err := svc.Update(ctx, cfg, "7")
	assert.True(t, IsNotFound(err))
	repo.AssertExpectations(t)
}
