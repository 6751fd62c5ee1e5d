package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

const configCacheTTL = 5 * time.Minute

type configurationService struct {
	repo repository.ConfigurationRepository

	mu       sync.Mutex
	cached   *domain.Configuration
	cachedAt time.Time
}

func NewConfigurationService(repo repository.ConfigurationRepository) ConfigurationService {
	return &configurationService{repo: repo}
}

func (s *configurationService) GetCurrent(ctx context.Context) (*domain.Configuration, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < configCacheTTL {
		cfg := s.cached
		s.mu.Unlock()
		logger.Debug("configuration served from cache", "config_id", cfg.ID)
		return cfg, nil
	}
	s.mu.Unlock()

	cfg, err := s.repo.GetLatest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Warn("no configuration record found, creating default")
		cfg = domain.DefaultConfiguration()
		if err := s.repo.Create(ctx, cfg); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = cfg
	s.cachedAt = time.Now()
	s.mu.Unlock()

	logger.Info("configuration loaded from database", "config_id", cfg.ID)
	return cfg, nil
}

func (s *configurationService) Update(ctx context.Context, cfg *domain.Configuration, actorID string) (*domain.Configuration, error) {
	if err := validateConfiguration(cfg); err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		// Bodies routinely omit the id; the update targets the live row.
		current, err := s.repo.GetLatest(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("configuration", 0)
			}
			return nil, err
		}
		cfg.ID = current.ID
	}

	cfg.UpdatedBy = actorID
	if err := s.repo.Update(ctx, cfg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("configuration", cfg.ID)
		}
		return nil, err
	}

	s.InvalidateCache()

	logger.Info("configuration updated", "config_id", cfg.ID, "updated_by", actorID)
	return cfg, nil
}

func validateConfiguration(cfg *domain.Configuration) error {
	switch {
	case cfg.DailyFineRate < 0:
		return businessRule("daily fine rate cannot be negative")
	case cfg.FineCeilingCents < 0:
		return businessRule("fine ceiling cannot be negative")
	case cfg.MaxItemsPerLoan < 1:
		return businessRule("max items per loan must be at least 1")
	case cfg.MaxActiveLoansPerClient < 1:
		return businessRule("max active loans per client must be at least 1")
	case cfg.MinRentalDays < 1:
		return businessRule("minimum rental days must be at least 1")
	case cfg.MaxRentalDays < cfg.MinRentalDays:
		return businessRule("maximum rental days cannot be below the minimum")
	case cfg.VIPDiscountRate < 0 || cfg.VIPDiscountRate >= 1:
		return businessRule("VIP discount rate must be between 0 and 1")
	case cfg.VIPBonusDays < 0:
		return businessRule("VIP bonus days cannot be negative")
	case cfg.DueWarningDays < 0:
		return businessRule("due warning days cannot be negative")
	case cfg.BlockAfterOverdueDays < 1:
		return businessRule("block after overdue days must be at least 1")
	case cfg.BlockDebtCents < 0:
		return businessRule("block debt threshold cannot be negative")
	}
	return nil
}

func (s *configurationService) InvalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()

	logger.Debug("configuration cache invalidated")
}
