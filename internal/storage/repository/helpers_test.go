package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cl-scripter/learning-api/internal/migrations"
	"github.com/cl-scripter/learning-api/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с уникальными именем и почтой
func (f *TestDataFactory) CreateUser(t *testing.T, username string, createdAt time.Time) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
		CreatedAt:    createdAt,
	}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return u
}

// CreateProgress создает запись прогресса
func (f *TestDataFactory) CreateProgress(t *testing.T, userID, language string, tutorialID int, completed bool, at time.Time) models.ProgressRecord {
	t.Helper()
	rec := models.ProgressRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Language:     language,
		TutorialID:   tutorialID,
		Completed:    completed,
		LastAccessed: at,
	}
	if completed {
		rec.CompletionTime = &at
	}
	saved, err := f.storage.UpsertProgress(context.Background(), rec)
	require.NoError(t, err)
	return *saved
}

// CreateExecution создает запись журнала запусков
func (f *TestDataFactory) CreateExecution(t *testing.T, language string, execErr *string) {
	t.Helper()
	require.NoError(t, f.storage.SaveExecution(context.Background(), models.ExecutionLogEntry{
		ID:            uuid.NewString(),
		SessionID:     "exec_test",
		Language:      language,
		Code:          "print(1)",
		Error:         execErr,
		ExecutionTime: time.Now().UTC(),
	}))
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB.DB, migrationsPath)
	require.NoError(t, err)

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}

	return storage, cleanup
}

func strPtr(s string) *string { return &s }
