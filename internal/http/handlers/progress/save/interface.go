package save

import (
	"context"

	"github.com/cl-scripter/learning-api/internal/models"
)

// Service сохраняет прогресс пользователя по уроку.
type Service interface {
	Save(ctx context.Context, userID string, req models.SaveProgressRequest) (*models.ProgressRecord, error)
}
