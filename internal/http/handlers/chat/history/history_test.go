package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) History(ctx context.Context, sessionID string, userID *string, limit int) ([]models.ChatExchange, error) {
	args := m.Called(ctx, sessionID, userID, limit)
	return args.Get(0).([]models.ChatExchange), args.Error(1)
}

func newRouter(svc Service, user *models.User) http.Handler {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Get("/chat/history/{sessionId}", func(w http.ResponseWriter, req *http.Request) {
		if user != nil {
			req = req.WithContext(middlewarectx.WithUser(req.Context(), user))
		}
		h.ServeHTTP(w, req)
	})
	return r
}

func TestHistoryHandler(t *testing.T) {
	sent := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("anonymous with limit", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "s1", (*string)(nil), 3).Return([]models.ChatExchange{
			{ID: "c1", SessionID: "s1", Message: "hi", Response: "hello", Timestamp: sent},
		}, nil)

		rec := httptest.NewRecorder()
		newRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/history/s1?limit=3", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"response":"hello"`)
		svc.AssertExpectations(t)
	})

	t.Run("authenticated default limit", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "s1",
			mock.MatchedBy(func(id *string) bool { return id != nil && *id == "u1" }), 0).
			Return([]models.ChatExchange{}, nil)

		rec := httptest.NewRecorder()
		newRouter(svc, &models.User{ID: "u1"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/history/s1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "s1", mock.Anything, mock.Anything).
			Return([]models.ChatExchange(nil), errors.New("boom"))

		rec := httptest.NewRecorder()
		newRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/history/s1", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
