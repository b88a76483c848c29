// Package models содержит доменные структуры платформы: пользователей, прогресс
// по урокам, журнал запусков кода, диалоги с тьютором и отчёты для администратора.
package models

import (
	"errors"
	"time"
)

// ErrUnauthenticated оборачивает все отказы в проверке токена доступа.
var ErrUnauthenticated = errors.New("could not validate credentials")

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string     `db:"id"`            // Уникальный идентификатор пользователя
	Username     string     `db:"username"`      // Имя пользователя (уникальное)
	Email        string     `db:"email"`         // Электронная почта (уникальная)
	FullName     *string    `db:"full_name"`     // Полное имя, необязательно
	PasswordHash string     `db:"password_hash"` // Хэш пароля пользователя
	IsActive     bool       `db:"is_active"`
	IsAdmin      bool       `db:"is_admin"` // Выставляется только при регистрации
	CreatedAt    time.Time  `db:"created_at"`
	LastLogin    *time.Time `db:"last_login"`
}

// PublicUser публичное представление пользователя, без хэша пароля.
type PublicUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  *string    `json:"fullName,omitempty"`
	IsActive  bool       `json:"isActive"`
	IsAdmin   bool       `json:"isAdmin"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Public возвращает представление пользователя для ответа клиенту.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// RegisterRequest данные для регистрации пользователя.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	FullName *string `json:"fullName,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest данные для входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenTypeBearer тип выдаваемого токена доступа.
const TokenTypeBearer = "bearer"

// Session результат регистрации или входа.
type Session struct {
	Token     string     `json:"token"`
	TokenType string     `json:"tokenType"`
	User      PublicUser `json:"user"`
}
