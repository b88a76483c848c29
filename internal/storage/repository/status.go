package repository

import (
	"context"
	"fmt"

	"github.com/cl-scripter/learning-api/internal/models"
)

// CreateStatusCheck сохраняет отметку статуса.
func (s *Storage) CreateStatusCheck(ctx context.Context, check models.StatusCheck) error {
	const op = "storage.CreateStatusCheck"

	if _, err := s.DB.NamedExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, checked_at) VALUES (:id, :client_name, :checked_at)`,
		check); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListStatusChecks возвращает последние limit отметок статуса.
func (s *Storage) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	const op = "storage.ListStatusChecks"

	checks := []models.StatusCheck{}
	if err := s.DB.SelectContext(ctx, &checks,
		`SELECT id, client_name, checked_at FROM status_checks ORDER BY checked_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return checks, nil
}
