// Package list отдаёт последние отметки доступности.
package list

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

// MaxChecks сколько последних отметок отдаётся за раз.
const MaxChecks = 1000

// Store читает отметки статуса.
type Store interface {
	ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

type Handler struct {
	log   *slog.Logger
	store Store
}

func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.status.list"

	checks, err := h.store.ListStatusChecks(r.Context(), MaxChecks)
	if err != nil {
		h.log.Error("failed to list status checks",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list status checks"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(checks))
}
