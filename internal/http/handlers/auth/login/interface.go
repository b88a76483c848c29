package login

import (
	"context"

	"github.com/cl-scripter/learning-api/internal/models"
)

// Service проверяет учётные данные и выдаёт токен.
type Service interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}
