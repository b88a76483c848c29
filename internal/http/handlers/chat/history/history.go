// Package history отдаёт последние реплики диалога с тьютором.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Service читает историю диалога. Для аутентифицированного пользователя
// история ограничена его собственными репликами.
type Service interface {
	History(ctx context.Context, sessionID string, userID *string, limit int) ([]models.ChatExchange, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("session id is required"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0
	}

	res, err := h.service.History(r.Context(), sessionID, middlewarectx.UserIDFromContext(r.Context()), limit)
	if err != nil {
		log.Error("failed to load chat history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load chat history"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
