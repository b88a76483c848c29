package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cl-scripter/learning-api/internal/models"
)

func TestStorage_Integration(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("CheckDatabaseReady", func(t *testing.T) {
		require.NoError(t, CheckDatabaseReady(ctx, storage))
		require.NoError(t, storage.Ping(ctx))
	})

	t.Run("Users", func(t *testing.T) {
		u := factory.CreateUser(t, "alice", now)

		byEmail, err := storage.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Nil(t, byEmail.LastLogin)

		byName, err := storage.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.Email, byName.Email)

		byID, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)

		require.NoError(t, storage.UpdateLastLogin(ctx, u.ID, now))
		byID, err = storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, byID.LastLogin)
		assert.True(t, now.Equal(*byID.LastLogin))

		err = storage.UpdateLastLogin(ctx, uuid.NewString(), now)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("DuplicateUser", func(t *testing.T) {
		factory.CreateUser(t, "bob", now)

		err := storage.CreateUser(ctx, models.User{
			ID: uuid.NewString(), Username: "bob2", Email: "bob@example.com",
			PasswordHash: "x", IsActive: true, CreatedAt: now,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)

		err = storage.CreateUser(ctx, models.User{
			ID: uuid.NewString(), Username: "bob", Email: "other@example.com",
			PasswordHash: "x", IsActive: true, CreatedAt: now,
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("Progress upsert keeps one record per key", func(t *testing.T) {
		u := factory.CreateUser(t, "carol", now)

		first := factory.CreateProgress(t, u.ID, "python", 1, false, now)
		assert.Nil(t, first.CompletionTime)

		done := now.Add(time.Minute)
		second, err := storage.UpsertProgress(ctx, models.ProgressRecord{
			ID: uuid.NewString(), UserID: u.ID, Language: "python", TutorialID: 1,
			Completed: true, CodeSnapshot: strPtr("print('hi')"),
			LastAccessed: done, CompletionTime: &done,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, second.Completed)
		require.NotNil(t, second.CompletionTime)

		later := now.Add(2 * time.Minute)
		third, err := storage.UpsertProgress(ctx, models.ProgressRecord{
			ID: uuid.NewString(), UserID: u.ID, Language: "python", TutorialID: 1,
			Completed: false, LastAccessed: later,
		})
		require.NoError(t, err)
		assert.False(t, third.Completed)
		require.NotNil(t, third.CompletionTime, "completion time survives a later incomplete save")
		assert.True(t, done.Equal(*third.CompletionTime))

		records, err := storage.ListProgress(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		got, err := storage.GetProgress(ctx, u.ID, "python", 1)
		require.NoError(t, err)
		assert.True(t, later.Equal(got.LastAccessed))

		_, err = storage.GetProgress(ctx, u.ID, "python", 99)
		assert.ErrorIs(t, err, ErrProgressNotFound)
	})

	t.Run("Progress listing", func(t *testing.T) {
		u := factory.CreateUser(t, "dave", now)
		factory.CreateProgress(t, u.ID, "python", 2, true, now)
		factory.CreateProgress(t, u.ID, "javascript", 1, false, now.Add(-48*time.Hour))
		factory.CreateProgress(t, u.ID, "python", 1, false, now)

		byLang, err := storage.ListProgressByLanguage(ctx, u.ID, "python")
		require.NoError(t, err)
		require.Len(t, byLang, 2)
		assert.Equal(t, 1, byLang[0].TutorialID)
		assert.Equal(t, 2, byLang[1].TutorialID)

		empty, err := storage.ListProgressByLanguage(ctx, u.ID, "ruby")
		require.NoError(t, err)
		assert.Empty(t, empty)

		recent, err := storage.ListRecentProgress(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)

		n, err := storage.CountProgressAccessedSince(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 2)

		all, err := storage.ListAllProgress(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 3)
	})

	t.Run("User counts", func(t *testing.T) {
		factory.CreateUser(t, "old", now.Add(-30*24*time.Hour))

		total, err := storage.CountUsers(ctx)
		require.NoError(t, err)
		since, err := storage.CountUsersCreatedSince(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, total-1, since)

		users, err := storage.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, total)
		assert.Equal(t, "old", users[0].Username)
	})

	t.Run("CommonErrors", func(t *testing.T) {
		factory.CreateExecution(t, "python", strPtr("NameError"))
		factory.CreateExecution(t, "python", strPtr("NameError"))
		factory.CreateExecution(t, "python", strPtr("SyntaxError"))
		factory.CreateExecution(t, "python", nil)

		summaries, err := storage.CommonErrors(ctx, 20)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, models.ErrorSummary{Language: "python", Error: "NameError", Count: 2}, summaries[0])

		top, err := storage.CommonErrors(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})

	t.Run("Chat history", func(t *testing.T) {
		u := factory.CreateUser(t, "erin", now)
		for i := range 3 {
			require.NoError(t, storage.SaveChatExchange(ctx, models.ChatExchange{
				ID: uuid.NewString(), SessionID: "s1", UserID: &u.ID,
				Message: "q", Response: "a", Timestamp: now.Add(time.Duration(i) * time.Second),
			}))
		}
		require.NoError(t, storage.SaveChatExchange(ctx, models.ChatExchange{
			ID: uuid.NewString(), SessionID: "s1", Message: "anon", Response: "a", Timestamp: now,
		}))

		all, err := storage.ListChatHistory(ctx, "s1", nil, 10)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		mine, err := storage.ListChatHistory(ctx, "s1", &u.ID, 2)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.True(t, mine[0].Timestamp.After(mine[1].Timestamp))
	})

	t.Run("Status checks", func(t *testing.T) {
		require.NoError(t, storage.CreateStatusCheck(ctx, models.StatusCheck{
			ID: uuid.NewString(), ClientName: "probe", Timestamp: now,
		}))
		checks, err := storage.ListStatusChecks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, checks, 1)
		assert.Equal(t, "probe", checks[0].ClientName)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.GetUserByID(cctx, uuid.NewString())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
