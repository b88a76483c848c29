package list

import (
	"context"

	"github.com/cl-scripter/learning-api/internal/models"
)

// Service отдаёт прогресс пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]models.ProgressRecord, error)
	ListByLanguage(ctx context.Context, userID, language string) ([]models.ProgressRecord, error)
}
