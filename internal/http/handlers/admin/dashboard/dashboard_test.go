package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cl-scripter/learning-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	args := m.Called(ctx)
	var d *models.Dashboard
	if v := args.Get(0); v != nil {
		d = v.(*models.Dashboard)
	}
	return d, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDashboardHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(&models.Dashboard{
		UserStats:     models.UserStats{TotalUsers: 2, ActiveToday: 1},
		LanguageStats: []models.LanguageStats{{Language: "python", TotalUsers: 2, TotalCompletions: 1, AvgCompletionRate: 1.0 / 3}},
	}, nil)

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Status string           `json:"status"`
		Data   models.Dashboard `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.Data.UserStats.TotalUsers)
	assert.InDelta(t, 1.0/3, got.Data.LanguageStats[0].AvgCompletionRate, 1e-9)
}

func TestDashboardHandler_Error(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(nil, errors.New("pq: connection refused"))

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
