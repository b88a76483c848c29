package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cl-scripter/learning-api/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash, is_active, is_admin, created_at, last_login`

// CreateUser сохраняет нового пользователя.
//
// Нарушение уникальности почты или имени возвращается как ErrEmailTaken или ErrUsernameTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES (:id, :username, :email, :full_name, :password_hash, :is_active, :is_admin, :created_at, :last_login)`
	if _, err := s.DB.NamedExecContext(ctx, query, user); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintUsersEmail:
				return fmt.Errorf("%s: %w", op, ErrEmailTaken)
			case constraintUsersUsername:
				return fmt.Errorf("%s: %w", op, ErrUsernameTaken)
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByEmail", `email = $1`, email)
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", `username = $1`, username)
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByID", `id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	if err := s.DB.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// UpdateLastLogin обновляет время последнего входа.
func (s *Storage) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const op = "storage.UpdateLastLogin"

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"

	var users []models.User
	if err := s.DB.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"

	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CountUsersCreatedSince возвращает количество пользователей, зарегистрированных не раньше since.
func (s *Storage) CountUsersCreatedSince(ctx context.Context, since time.Time) (int, error) {
	const op = "storage.CountUsersCreatedSince"

	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
