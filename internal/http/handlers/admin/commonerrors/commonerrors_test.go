package commonerrors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cl-scripter/learning-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CommonErrors(ctx context.Context, limit int) ([]models.ErrorSummary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.ErrorSummary), args.Error(1)
}

func TestErrorsHandler_Limit(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{name: "default", query: "", wantLimit: 0},
		{name: "explicit", query: "?limit=5", wantLimit: 5},
		{name: "negative", query: "?limit=-3", wantLimit: 0},
		{name: "garbage", query: "?limit=abc", wantLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("CommonErrors", mock.Anything, tt.wantLimit).Return([]models.ErrorSummary{
				{Language: "python", Error: "SyntaxError", Count: 4},
			}, nil).Once()

			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/errors"+tt.query, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"count":4`)
			svc.AssertExpectations(t)
		})
	}
}

func TestErrorsHandler_Failure(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("CommonErrors", mock.Anything, 0).Return([]models.ErrorSummary(nil), errors.New("boom"))

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/errors", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
