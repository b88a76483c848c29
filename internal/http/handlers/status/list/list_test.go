package list

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

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.StatusCheck), args.Error(1)
}

func TestListHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := new(StoreMock)
	store.On("ListStatusChecks", mock.Anything, MaxChecks).Return([]models.StatusCheck{{ID: "s1", ClientName: "web"}}, nil)
	rec := httptest.NewRecorder()
	New(log, store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"clientName":"web"`)

	failing := new(StoreMock)
	failing.On("ListStatusChecks", mock.Anything, MaxChecks).Return([]models.StatusCheck(nil), errors.New("boom"))
	rec = httptest.NewRecorder()
	New(log, failing).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
