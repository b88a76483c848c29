// Package services содержит логику регистрации, входа и проверки токенов доступа.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cl-scripter/learning-api/internal/lib/jwt"
	"github.com/cl-scripter/learning-api/internal/lib/password"
	"github.com/cl-scripter/learning-api/internal/models"
	"github.com/cl-scripter/learning-api/internal/storage/repository"
)

// Ошибки аутентификации и авторизации.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", models.ErrUnauthenticated)
	ErrUnknownSubject     = fmt.Errorf("%w: token subject does not exist", models.ErrUnauthenticated)
	ErrForbidden          = errors.New("admin access required")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error
	// GetUserByEmail возвращает пользователя по почте или repository.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени или repository.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByID возвращает пользователя по ID или repository.ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// UpdateLastLogin обновляет время последнего входа.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Invalidator сбрасывает закешированную панель администратора после появления нового пользователя.
type Invalidator interface {
	InvalidateDashboard(ctx context.Context)
}

// AuthService отвечает за регистрацию, вход и валидацию JWT.
type AuthService struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	hasher     PasswordHasher
	dashboard  Invalidator
	adminEmail string
	dummyHash  string
	now        func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
//
// Пользователь, зарегистрированный с почтой adminEmail, становится администратором.
// dashboard может быть nil.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, hasher PasswordHasher, adminEmail string, dashboard Invalidator) *AuthService {
	// Сравнивается при входе с неизвестной почтой.
	dummyHash, _ := hasher.Hash("cl-scripter-dummy-password")
	return &AuthService{
		users:      users,
		jwtMaker:   jwtMaker,
		hasher:     hasher,
		dashboard:  dashboard,
		adminEmail: normalizeEmail(adminEmail),
		dummyHash:  dummyHash,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register создает пользователя и сразу выдаёт ему токен.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	const op = "services.auth.Register"

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := s.ensureFree(ctx, email, username); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hashed,
		IsActive:     true,
		IsAdmin:      s.adminEmail != "" && email == s.adminEmail,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			err = ErrDuplicateEmail
		case errors.Is(err, repository.ErrUsernameTaken):
			err = ErrDuplicateUsername
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, &user, nil
}

func (s *AuthService) ensureFree(ctx context.Context, email, username string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}

	_, err = s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrDuplicateUsername
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}
	return nil
}

// Login проверяет пароль и выдаёт новый токен.
//
// Неизвестная почта и неверный пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, rawPassword)
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.LastLogin = &now

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// Authenticate проверяет токен и возвращает его владельца.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	subject := claims.UserID()
	if _, err := uuid.Parse(subject); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnknownSubject)
	}

	user, err := s.users.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownSubject)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// RequireAdmin пропускает только администраторов.
func (s *AuthService) RequireAdmin(user *models.User) (*models.User, error) {
	if user == nil || !user.IsAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
