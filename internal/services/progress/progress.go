// Package services содержит логику сохранения и чтения прогресса по урокам.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
	"github.com/cl-scripter/learning-api/internal/storage/repository"
)

// ProgressRepository определяет методы хранилища прогресса.
type ProgressRepository interface {
	// GetProgress возвращает запись по ключу или repository.ErrProgressNotFound.
	GetProgress(ctx context.Context, userID, language string, tutorialID int) (*models.ProgressRecord, error)
	// UpsertProgress сохраняет запись, обновляя существующую с тем же ключом.
	UpsertProgress(ctx context.Context, p models.ProgressRecord) (*models.ProgressRecord, error)
	// ListProgress возвращает все записи пользователя.
	ListProgress(ctx context.Context, userID string) ([]models.ProgressRecord, error)
	// ListProgressByLanguage возвращает записи пользователя по языку.
	ListProgressByLanguage(ctx context.Context, userID, language string) ([]models.ProgressRecord, error)
}

// EventPublisher публикует учебные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Invalidator сбрасывает закешированные отчёты после изменения прогресса.
type Invalidator interface {
	InvalidateDashboard(ctx context.Context)
}

// ProgressService реализует сохранение прогресса по ключу (пользователь, язык, урок).
type ProgressService struct {
	repo   ProgressRepository
	events EventPublisher
	cache  Invalidator
	log    *slog.Logger
	now    func() time.Time
}

// NewProgressService создает новый экземпляр ProgressService. cache может быть nil.
func NewProgressService(repo ProgressRepository, events EventPublisher, cache Invalidator, log *slog.Logger) *ProgressService {
	return &ProgressService{
		repo:   repo,
		events: events,
		cache:  cache,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Save создаёт запись при первом сохранении и обновляет её при последующих.
//
// Время завершения выставляется при каждом сохранении с completed = true.
func (s *ProgressService) Save(ctx context.Context, userID string, req models.SaveProgressRequest) (*models.ProgressRecord, error) {
	const op = "services.progress.Save"

	language := strings.ToLower(strings.TrimSpace(req.Language))
	now := s.now()

	record := models.ProgressRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Language:   language,
		TutorialID: req.TutorialID,
	}
	existing, err := s.repo.GetProgress(ctx, userID, language, req.TutorialID)
	switch {
	case err == nil:
		record = *existing
	case !errors.Is(err, repository.ErrProgressNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	record.Completed = req.Completed
	record.CodeSnapshot = req.CodeSnapshot
	record.LastAccessed = now
	if req.Completed {
		record.CompletionTime = &now
	}

	saved, err := s.repo.UpsertProgress(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		s.cache.InvalidateDashboard(ctx)
	}
	s.publish(ctx, *saved)
	return saved, nil
}

func (s *ProgressService) publish(ctx context.Context, p models.ProgressRecord) {
	event := models.ProgressEvent{
		UserID:     p.UserID,
		Language:   p.Language,
		TutorialID: p.TutorialID,
		Completed:  p.Completed,
		OccurredAt: p.LastAccessed,
	}
	keys := []string{models.EventProgressSaved}
	if p.Completed {
		keys = append(keys, models.EventProgressCompleted)
	}
	for _, key := range keys {
		if err := s.events.Publish(ctx, key, event); err != nil {
			s.log.Warn("failed to publish progress event",
				slog.String("routing_key", key), sl.UserID(p.UserID), sl.Err(err))
		}
	}
}

// List возвращает все записи прогресса пользователя.
func (s *ProgressService) List(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	const op = "services.progress.List"
	records, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListByLanguage возвращает записи прогресса пользователя по одному языку.
func (s *ProgressService) ListByLanguage(ctx context.Context, userID, language string) ([]models.ProgressRecord, error) {
	const op = "services.progress.ListByLanguage"
	records, err := s.repo.ListProgressByLanguage(ctx, userID, strings.ToLower(strings.TrimSpace(language)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}
