package repository

import (
	"context"
	"fmt"

	"github.com/cl-scripter/learning-api/internal/models"
)

// SaveChatExchange сохраняет обмен репликами с тьютором.
func (s *Storage) SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error {
	const op = "storage.SaveChatExchange"

	query := `INSERT INTO chat_messages (id, session_id, user_id, message, response, context, sent_at)
			  VALUES (:id, :session_id, :user_id, :message, :response, :context, :sent_at)`
	if _, err := s.DB.NamedExecContext(ctx, query, exchange); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListChatHistory возвращает последние limit обменов сессии, новые первыми.
// Если userID задан, выборка ограничивается сообщениями этого пользователя.
func (s *Storage) ListChatHistory(ctx context.Context, sessionID string, userID *string, limit int) ([]models.ChatExchange, error) {
	const op = "storage.ListChatHistory"

	history := []models.ChatExchange{}
	query := `SELECT id, session_id, user_id, message, response, context, sent_at
			  FROM chat_messages
			  WHERE session_id = $1 AND ($2::uuid IS NULL OR user_id = $2::uuid)
			  ORDER BY sent_at DESC, id
			  LIMIT $3`
	if err := s.DB.SelectContext(ctx, &history, query, sessionID, userID, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return history, nil
}
