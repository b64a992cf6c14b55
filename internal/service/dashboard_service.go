package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardRepository interface {
	CountActiveRooms(ctx context.Context) (int, error)
	CountClassGroups(ctx context.Context) (int, error)
	CountTimetableEntries(ctx context.Context) (int, error)
	CountPendingReservations(ctx context.Context) (int, error)
	CountUsersByRole(ctx context.Context) ([]models.RoleCount, error)
	BusiestRooms(ctx context.Context, limit int) ([]models.RoomUsage, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL        time.Duration
	BusiestRoomsMax int
}

// DashboardService composes the admin landing page aggregates, cache-aside.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.BusiestRoomsMax <= 0 {
		cfg.BusiestRoomsMax = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cfg: cfg}
}

// Summary returns the dashboard aggregates and whether the cache served them.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary := &models.DashboardSummary{}
	var err error

	if summary.ActiveRooms, err = s.repo.CountActiveRooms(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	if summary.ClassGroups, err = s.repo.CountClassGroups(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class groups")
	}
	if summary.TimetableEntries, err = s.repo.CountTimetableEntries(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count timetable entries")
	}
	if summary.PendingReservations, err = s.repo.CountPendingReservations(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reservations")
	}
	if summary.UsersByRole, err = s.repo.CountUsersByRole(ctx); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	if summary.BusiestRooms, err = s.repo.BusiestRooms(ctx, s.cfg.BusiestRoomsMax); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank rooms")
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
	}
	return summary, false, nil
}
