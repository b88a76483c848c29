package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cl-scripter/learning-api/internal/models"
)

const progressColumns = `id, user_id, language, tutorial_id, completed, code_snapshot, last_accessed, completion_time`

// GetProgress возвращает запись прогресса по тройке (пользователь, язык, урок).
func (s *Storage) GetProgress(ctx context.Context, userID, language string, tutorialID int) (*models.ProgressRecord, error) {
	const op = "storage.GetProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var p models.ProgressRecord
	query := `SELECT ` + progressColumns + `
			  FROM user_progress
			  WHERE user_id = $1 AND language = $2 AND tutorial_id = $3`
	if err := s.DB.GetContext(ctx, &p, query, userID, language, tutorialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrProgressNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpsertProgress вставляет запись или обновляет существующую с тем же ключом
// (user_id, language, tutorial_id) одной командой.
//
// Время завершения перезаписывается только когда completed = true.
func (s *Storage) UpsertProgress(ctx context.Context, p models.ProgressRecord) (*models.ProgressRecord, error) {
	const op = "storage.UpsertProgress"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_progress (` + progressColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (user_id, language, tutorial_id) DO UPDATE
			  SET completed = EXCLUDED.completed,
			      code_snapshot = EXCLUDED.code_snapshot,
			      last_accessed = EXCLUDED.last_accessed,
			      completion_time = CASE WHEN EXCLUDED.completed
			                             THEN EXCLUDED.completion_time
			                             ELSE user_progress.completion_time END
			  RETURNING ` + progressColumns
	var saved models.ProgressRecord
	if err := s.DB.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.Language, p.TutorialID, p.Completed, p.CodeSnapshot,
		p.LastAccessed, p.CompletionTime).StructScan(&saved); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &saved, nil
}

// ListProgress возвращает все записи прогресса пользователя.
func (s *Storage) ListProgress(ctx context.Context, userID string) ([]models.ProgressRecord, error) {
	const op = "storage.ListProgress"

	records := []models.ProgressRecord{}
	query := `SELECT ` + progressColumns + `
			  FROM user_progress
			  WHERE user_id = $1
			  ORDER BY language, tutorial_id`
	if err := s.DB.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListProgressByLanguage возвращает записи прогресса пользователя по одному языку.
func (s *Storage) ListProgressByLanguage(ctx context.Context, userID, language string) ([]models.ProgressRecord, error) {
	const op = "storage.ListProgressByLanguage"

	records := []models.ProgressRecord{}
	query := `SELECT ` + progressColumns + `
			  FROM user_progress
			  WHERE user_id = $1 AND language = $2
			  ORDER BY tutorial_id`
	if err := s.DB.SelectContext(ctx, &records, query, userID, language); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListAllProgress возвращает все записи прогресса всех пользователей.
func (s *Storage) ListAllProgress(ctx context.Context) ([]models.ProgressRecord, error) {
	const op = "storage.ListAllProgress"

	records := []models.ProgressRecord{}
	if err := s.DB.SelectContext(ctx, &records,
		`SELECT `+progressColumns+` FROM user_progress ORDER BY language, tutorial_id, user_id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// ListRecentProgress возвращает последние по времени доступа записи прогресса.
func (s *Storage) ListRecentProgress(ctx context.Context, limit int) ([]models.ProgressRecord, error) {
	const op = "storage.ListRecentProgress"

	records := []models.ProgressRecord{}
	query := `SELECT ` + progressColumns + `
			  FROM user_progress
			  ORDER BY last_accessed DESC, id
			  LIMIT $1`
	if err := s.DB.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// CountProgressAccessedSince возвращает количество записей прогресса с доступом не раньше since.
func (s *Storage) CountProgressAccessedSince(ctx context.Context, since time.Time) (int, error) {
	const op = "storage.CountProgressAccessedSince"

	var n int
	if err := s.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM user_progress WHERE last_accessed >= $1`, since); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
