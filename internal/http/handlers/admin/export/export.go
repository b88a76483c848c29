// Package export отдаёт сводку по пользователям файлом XLSX.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
	"github.com/cl-scripter/learning-api/internal/report"
)

// Service собирает сводку по пользователям.
type Service interface {
	Users(ctx context.Context) ([]models.UserSummary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.Users(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to export users"))
		return
	}

	var buf bytes.Buffer
	if err := report.WriteUsers(&buf, users); err != nil {
		log.Error("failed to build workbook", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to export users"))
		return
	}

	filename := fmt.Sprintf("users-%s.xlsx", h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write workbook", sl.Err(err))
		return
	}
	log.Info("users exported", "count", len(users))
}
