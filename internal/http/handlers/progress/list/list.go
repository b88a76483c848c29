package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка прогресса. Если в маршруте есть параметр
// {language}, список фильтруется по языку.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прогресс пользователя
// @Tags Progress
// @Produce  json
// @Security BearerAuth
// @Param language path string false "Язык программирования"
// @Success 200 {object} response.Response{data=[]models.ProgressRecord}
// @Failure 401 {object} response.ErrorResponse
// @Router /progress [get]
// @Router /progress/{language} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var (
		res []models.ProgressRecord
		err error
	)
	if language := chi.URLParam(r, "language"); language != "" {
		res, err = h.service.ListByLanguage(r.Context(), user.ID, language)
	} else {
		res, err = h.service.List(r.Context(), user.ID)
	}
	if err != nil {
		log.Error("failed to list progress", sl.Err(err), sl.UserID(user.ID))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list progress"))
		return
	}

	log.Info("list progress", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(res))
}
