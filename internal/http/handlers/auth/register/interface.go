package register

import (
	"context"

	"github.com/cl-scripter/learning-api/internal/models"
)

// Service регистрирует пользователя и выдаёт ему токен.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error)
}
