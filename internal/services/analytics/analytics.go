// Package services содержит отчёты для панели администратора, построенные по
// прогрессу пользователей, учётным записям и журналу запусков кода.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
	"github.com/cl-scripter/learning-api/internal/storage/repository"
)

// Ограничения выборок.
const (
	RecentActivityLimit = 10
	DefaultErrorsLimit  = 20
	MaxErrorsLimit      = 100
)

const dashboardCacheKey = "analytics:dashboard"

// Repository определяет выборки, нужные отчётам. Только чтение.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountUsersCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountProgressAccessedSince(ctx context.Context, since time.Time) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListAllProgress(ctx context.Context) ([]models.ProgressRecord, error)
	ListRecentProgress(ctx context.Context, limit int) ([]models.ProgressRecord, error)
	CommonErrors(ctx context.Context, limit int) ([]models.ErrorSummary, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// AnalyticsService строит отчёты по запросу, без инкрементального учёта.
type AnalyticsService struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewAnalyticsService создает новый экземпляр AnalyticsService.
// При cache == nil или cacheTTL <= 0 панель не кешируется.
func NewAnalyticsService(repo Repository, cache Cache, cacheTTL time.Duration, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UserStats считает пользователей и активность.
//
// "Сегодня" начинается с полуночи UTC, "неделя" это последние 7 суток от текущего момента.
// Активность считается по записям прогресса, а не по уникальным пользователям.
func (s *AnalyticsService) UserStats(ctx context.Context) (models.UserStats, error) {
	const op = "services.analytics.UserStats"

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var stats models.UserStats
	var err error
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return models.UserStats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.ActiveToday, err = s.repo.CountProgressAccessedSince(ctx, today); err != nil {
		return models.UserStats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.ActiveThisWeek, err = s.repo.CountProgressAccessedSince(ctx, weekAgo); err != nil {
		return models.UserStats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.NewThisWeek, err = s.repo.CountUsersCreatedSince(ctx, weekAgo); err != nil {
		return models.UserStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// LanguageStats статистика по языкам.
func (s *AnalyticsService) LanguageStats(ctx context.Context) ([]models.LanguageStats, error) {
	const op = "services.analytics.LanguageStats"
	records, err := s.repo.ListAllProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return GroupByLanguage(records), nil
}

// TutorialStats статистика по урокам.
func (s *AnalyticsService) TutorialStats(ctx context.Context) ([]models.TutorialStats, error) {
	const op = "services.analytics.TutorialStats"
	records, err := s.repo.ListAllProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return GroupByTutorial(records), nil
}

// RecentActivity возвращает последние limit действий, новые первыми.
func (s *AnalyticsService) RecentActivity(ctx context.Context, limit int) ([]models.RecentActivity, error) {
	const op = "services.analytics.RecentActivity"
	if limit <= 0 {
		limit = RecentActivityLimit
	}

	records, err := s.repo.ListRecentProgress(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	usernames := make(map[string]string, len(records))
	for _, r := range records {
		if _, seen := usernames[r.UserID]; seen {
			continue
		}
		u, err := s.repo.GetUserByID(ctx, r.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		usernames[r.UserID] = u.Username
	}
	return RecentActivity(records, usernames), nil
}

// Dashboard собирает все разделы панели. Результат кешируется на cacheTTL,
// ошибки кеша только логируются.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	const op = "services.analytics.Dashboard"

	if s.cacheEnabled() {
		var cached models.Dashboard
		found, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read dashboard from cache", sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	userStats, err := s.UserStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := s.repo.ListAllProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	recent, err := s.RecentActivity(ctx, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dashboard := &models.Dashboard{
		UserStats:      userStats,
		LanguageStats:  GroupByLanguage(records),
		TutorialStats:  GroupByTutorial(records),
		RecentActivity: recent,
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, dashboardCacheKey, dashboard, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache dashboard", sl.Err(err))
		}
	}
	return dashboard, nil
}

// InvalidateDashboard сбрасывает закешированную панель.
func (s *AnalyticsService) InvalidateDashboard(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", sl.Err(err))
	}
}

// Users сводка по каждому пользователю без хэшей паролей.
func (s *AnalyticsService) Users(ctx context.Context) ([]models.UserSummary, error) {
	const op = "services.analytics.Users"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := s.repo.ListAllProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return SummarizeUsers(users, records), nil
}

// CommonErrors возвращает не больше limit самых частых ошибок запуска.
func (s *AnalyticsService) CommonErrors(ctx context.Context, limit int) ([]models.ErrorSummary, error) {
	const op = "services.analytics.CommonErrors"
	switch {
	case limit <= 0:
		limit = DefaultErrorsLimit
	case limit > MaxErrorsLimit:
		limit = MaxErrorsLimit
	}

	summaries, err := s.repo.CommonErrors(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summaries, nil
}

func (s *AnalyticsService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
