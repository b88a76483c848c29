package send

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/models"
	tutorservice "github.com/cl-scripter/learning-api/internal/services/tutor"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Converse(ctx context.Context, userID *string, req models.ChatRequest) (*models.ChatReply, error) {
	args := m.Called(ctx, userID, req)
	var reply *models.ChatReply
	if v := args.Get(0); v != nil {
		reply = v.(*models.ChatReply)
	}
	return reply, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validBody = `{"sessionId":"s1","message":"what is a loop?"}`

func TestSendHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mockErr  error
		callsSvc bool
		wantCode int
		wantBody string
	}{
		{
			name:     "reply",
			body:     validBody,
			callsSvc: true,
			wantCode: http.StatusOK,
			wantBody: `"response":"A loop repeats code."`,
		},
		{
			name:     "not configured",
			body:     validBody,
			mockErr:  fmt.Errorf("services.tutor.Converse: %w", tutorservice.ErrNotConfigured),
			callsSvc: true,
			wantCode: http.StatusInternalServerError,
			wantBody: "tutor is not configured",
		},
		{
			name:     "upstream timeout",
			body:     validBody,
			mockErr:  fmt.Errorf("services.tutor.Converse: %w: deadline", tutorservice.ErrUpstream),
			callsSvc: true,
			wantCode: http.StatusBadGateway,
			wantBody: "tutor service unavailable",
		},
		{
			name:     "storage failure",
			body:     validBody,
			mockErr:  errors.New("insert failed"),
			callsSvc: true,
			wantCode: http.StatusInternalServerError,
			wantBody: "chat service error",
		},
		{
			name:     "missing session",
			body:     `{"message":"hi"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "field SessionID is a required field",
		},
		{
			name:     "broken json",
			body:     `{`,
			wantCode: http.StatusBadRequest,
			wantBody: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsSvc {
				var reply *models.ChatReply
				if tt.mockErr == nil {
					reply = &models.ChatReply{Response: "A loop repeats code.", SessionID: "s1"}
				}
				svc.On("Converse", mock.Anything, (*string)(nil), mock.Anything).Return(reply, tt.mockErr).Once()
			}

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestSendHandler_PassesUserID(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Converse", mock.Anything,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == "u1" }),
		mock.MatchedBy(func(r models.ChatRequest) bool { return r.SessionID == "s1" }),
	).Return(&models.ChatReply{Response: "ok", SessionID: "s1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(validBody))
	req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.User{ID: "u1"}))
	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
