package learningapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/cl-scripter/learning-api/internal/http/handlers/admin/commonerrors"
	"github.com/cl-scripter/learning-api/internal/http/handlers/admin/dashboard"
	"github.com/cl-scripter/learning-api/internal/http/handlers/admin/export"
	"github.com/cl-scripter/learning-api/internal/http/handlers/admin/users"
	"github.com/cl-scripter/learning-api/internal/http/handlers/auth/login"
	"github.com/cl-scripter/learning-api/internal/http/handlers/auth/me"
	"github.com/cl-scripter/learning-api/internal/http/handlers/auth/register"
	"github.com/cl-scripter/learning-api/internal/http/handlers/chat/history"
	"github.com/cl-scripter/learning-api/internal/http/handlers/chat/send"
	"github.com/cl-scripter/learning-api/internal/http/handlers/execute"
	"github.com/cl-scripter/learning-api/internal/http/handlers/health"
	"github.com/cl-scripter/learning-api/internal/http/handlers/ping"
	progresslist "github.com/cl-scripter/learning-api/internal/http/handlers/progress/list"
	"github.com/cl-scripter/learning-api/internal/http/handlers/progress/save"
	statuscreate "github.com/cl-scripter/learning-api/internal/http/handlers/status/create"
	statuslist "github.com/cl-scripter/learning-api/internal/http/handlers/status/list"
	"github.com/cl-scripter/learning-api/internal/http/middlewarectx"
	"github.com/cl-scripter/learning-api/internal/metrics"
	analyticsservice "github.com/cl-scripter/learning-api/internal/services/analytics"
	authservice "github.com/cl-scripter/learning-api/internal/services/auth"
	executionservice "github.com/cl-scripter/learning-api/internal/services/execution"
	progressservice "github.com/cl-scripter/learning-api/internal/services/progress"
	tutorservice "github.com/cl-scripter/learning-api/internal/services/tutor"
)

// Store часть хранилища, которую маршруты используют напрямую.
type Store interface {
	health.Pinger
	statuscreate.Store
	statuslist.Store
}

// Deps зависимости маршрутов.
type Deps struct {
	Store     Store
	Auth      *authservice.AuthService
	Progress  *progressservice.ProgressService
	Analytics *analyticsservice.AnalyticsService
	Execution *executionservice.ExecutionService
	Tutor     *tutorservice.TutorService
	RPS       float64
	Burst     int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", ping.Handler)
		r.Get("/health", health.New(logger, d.Store).ServeHTTP)
		r.Post("/status", statuscreate.New(logger, d.Store).ServeHTTP)
		r.Get("/status", statuslist.New(logger, d.Store).ServeHTTP)

		r.Post("/auth/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, d.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Get("/auth/me", me.New(logger).ServeHTTP)

			progressList := progresslist.New(logger, d.Progress)
			r.Post("/progress", save.New(logger, d.Progress).ServeHTTP)
			r.Get("/progress", progressList.ServeHTTP)
			r.Get("/progress/{language}", progressList.ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(d.Auth, logger))
				r.Get("/dashboard", dashboard.New(logger, d.Analytics).ServeHTTP)
				r.Get("/users", users.New(logger, d.Analytics).ServeHTTP)
				r.Get("/users/export", export.New(logger, d.Analytics).ServeHTTP)
				r.Get("/errors", commonerrors.New(logger, d.Analytics).ServeHTTP)
			})
		})

		// Конечные точки, доступные и анонимно
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(d.Auth, logger))

			r.With(middlewarectx.RateLimitMiddleware(logger, d.RPS, d.Burst)).
				Post("/execute", execute.New(logger, d.Execution).ServeHTTP)
			r.With(middlewarectx.RateLimitMiddleware(logger, d.RPS, d.Burst)).
				Post("/chat", send.New(logger, d.Tutor).ServeHTTP)
			r.Get("/chat/history/{sessionId}", history.New(logger, d.Tutor).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
