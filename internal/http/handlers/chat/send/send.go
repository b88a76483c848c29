// Package send передаёт вопрос студента тьютору.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
	tutorservice "github.com/cl-scripter/learning-api/internal/services/tutor"
)

// Service ведёт диалог с тьютором.
type Service interface {
	Converse(ctx context.Context, userID *string, req models.ChatRequest) (*models.ChatReply, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вопрос тьютору
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body models.ChatRequest true "Сообщение"
// @Success 200 {object} response.Response{data=models.ChatReply}
// @Failure 502 {object} response.ErrorResponse "Модель недоступна"
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	reply, err := h.service.Converse(r.Context(), middlewarectx.UserIDFromContext(r.Context()), req)
	switch {
	case errors.Is(err, tutorservice.ErrNotConfigured):
		log.Error("tutor is not configured")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("tutor is not configured"))
		return
	case errors.Is(err, tutorservice.ErrUpstream):
		log.Warn("tutor upstream failed", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("tutor service unavailable"))
		return
	case err != nil:
		log.Error("chat failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("chat service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(reply))
}
