// Package users отдаёт администратору сводку по каждому пользователю.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Service собирает сводку по пользователям.
type Service interface {
	Users(ctx context.Context) ([]models.UserSummary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Users(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	log.Info("list users", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(res))
}
