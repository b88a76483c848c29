package repository

import (
	"context"
	"fmt"

	"github.com/cl-scripter/learning-api/internal/models"
)

// SaveExecution сохраняет запись журнала запуска кода.
func (s *Storage) SaveExecution(ctx context.Context, entry models.ExecutionLogEntry) error {
	const op = "storage.SaveExecution"

	query := `INSERT INTO code_executions
			      (id, user_id, session_id, language, code, output, error, execution_time, tutorial_id)
			  VALUES (:id, :user_id, :session_id, :language, :code, :output, :error, :execution_time, :tutorial_id)`
	if _, err := s.DB.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CommonErrors группирует запуски с ошибкой по (язык, текст ошибки)
// и возвращает limit самых частых, по убыванию количества.
func (s *Storage) CommonErrors(ctx context.Context, limit int) ([]models.ErrorSummary, error) {
	const op = "storage.CommonErrors"

	summaries := []models.ErrorSummary{}
	query := `SELECT language, error, COUNT(*) AS count
			  FROM code_executions
			  WHERE error IS NOT NULL
			  GROUP BY language, error
			  ORDER BY count DESC, language, error
			  LIMIT $1`
	if err := s.DB.SelectContext(ctx, &summaries, query, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summaries, nil
}
