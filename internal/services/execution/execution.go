// Package services содержит шлюз исполнения кода: запуск во внешнем сервисе,
// журналирование запуска и публикацию события.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cl-scripter/learning-api/internal/compiler"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/metrics"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Runner исполняет код во внешнем сервисе.
type Runner interface {
	Execute(ctx context.Context, language, code string) compiler.Result
}

// ExecutionRepository сохраняет журнал запусков.
type ExecutionRepository interface {
	SaveExecution(ctx context.Context, entry models.ExecutionLogEntry) error
}

// EventPublisher публикует учебные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ExecutionService запускает код пользователя и ведёт журнал запусков.
type ExecutionService struct {
	runner Runner
	repo   ExecutionRepository
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewExecutionService создает новый экземпляр ExecutionService.
func NewExecutionService(runner Runner, repo ExecutionRepository, events EventPublisher, log *slog.Logger) *ExecutionService {
	return &ExecutionService{
		runner: runner,
		repo:   repo,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Execute запускает код. Ошибки запуска возвращаются в результате, а не как error.
// error возвращается только если не удалось записать журнал.
func (s *ExecutionService) Execute(ctx context.Context, userID *string, req models.ExecuteRequest) (models.ExecutionResult, error) {
	const op = "services.execution.Execute"

	result := s.runner.Execute(ctx, req.Language, req.Code)
	metrics.Executions.WithLabelValues(req.Language, result.Outcome).Inc()

	now := s.now()
	entry := models.ExecutionLogEntry{
		ID:            uuid.NewString(),
		UserID:        userID,
		SessionID:     fmt.Sprintf("exec_%d", now.UnixNano()),
		Language:      req.Language,
		Code:          req.Code,
		Output:        result.Output,
		Error:         result.Error,
		ExecutionTime: now,
		TutorialID:    req.TutorialID,
	}
	if err := s.repo.SaveExecution(ctx, entry); err != nil {
		return models.ExecutionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	event := models.ExecutionEvent{
		UserID:     userID,
		Language:   req.Language,
		TutorialID: req.TutorialID,
		Failed:     result.Error != nil,
		OccurredAt: now,
	}
	if err := s.events.Publish(ctx, models.EventCodeExecuted, event); err != nil {
		s.log.Warn("failed to publish execution event", slog.String("session_id", entry.SessionID), sl.Err(err))
	}

	return result.ExecutionResult, nil
}
