// Package commonerrors отдаёт самые частые ошибки выполнения кода.
package commonerrors

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Service агрегирует ошибки выполнения. Неположительный limit означает значение по умолчанию.
type Service interface {
	CommonErrors(ctx context.Context, limit int) ([]models.ErrorSummary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.commonerrors"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0
	}

	res, err := h.service.CommonErrors(r.Context(), limit)
	if err != nil {
		log.Error("failed to aggregate errors", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to aggregate errors"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
