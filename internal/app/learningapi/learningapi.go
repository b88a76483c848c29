// Package learningapi собирает HTTP API платформы обучения: открывает хранилище,
// кеш и брокер, создаёт сервисы и владеет их жизненным циклом.
package learningapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"golang.org/x/crypto/bcrypt"

	"github.com/cl-scripter/learning-api/internal/cache"
	"github.com/cl-scripter/learning-api/internal/compiler"
	"github.com/cl-scripter/learning-api/internal/config"
	"github.com/cl-scripter/learning-api/internal/events"
	"github.com/cl-scripter/learning-api/internal/lib/jwt"
	"github.com/cl-scripter/learning-api/internal/lib/password"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/llm"
	"github.com/cl-scripter/learning-api/internal/migrations"
	analyticsservice "github.com/cl-scripter/learning-api/internal/services/analytics"
	authservice "github.com/cl-scripter/learning-api/internal/services/auth"
	executionservice "github.com/cl-scripter/learning-api/internal/services/execution"
	progressservice "github.com/cl-scripter/learning-api/internal/services/progress"
	tutorservice "github.com/cl-scripter/learning-api/internal/services/tutor"
	"github.com/cl-scripter/learning-api/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// publisher издатель событий, который можно закрыть при остановке.
type publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	events publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "learningapi.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	version, err := migrations.Run(db.DB.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db, events: closableNoop{}}

	var dashboardCache analyticsservice.Cache
	app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis is unavailable, dashboard cache disabled", sl.Err(err))
	} else {
		dashboardCache = app.cache
	}

	if cfg.RabbitMQURL != "" {
		pub, err := events.Dial(cfg.RabbitMQURL, cfg.Exchange, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.events = pub
		logger.Info("learning events enabled", slog.String("exchange", cfg.Exchange))
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	analyticsService := analyticsservice.NewAnalyticsService(db, dashboardCache, cfg.DashboardTTL, logger)
	authService := authservice.NewAuthService(db, jwtMaker, password.NewHasher(bcrypt.DefaultCost), cfg.AdminEmail, analyticsService)
	progressService := progressservice.NewProgressService(db, app.events, analyticsService, logger)

	compilerClient := compiler.NewClient(cfg.CompilerURL, cfg.ClientID, cfg.ClientSecret, cfg.CompilerTimeout)
	executionService := executionservice.NewExecutionService(compilerClient, db, app.events, logger)

	model := llm.NewClient(cfg.TutorURL, cfg.APIKey, cfg.Model, cfg.TutorTimeout)
	if !model.Configured() {
		logger.Warn("tutor api key is not set, /chat will fail")
	}
	tutorService := tutorservice.NewTutorService(model, db, cfg.MaxTokens, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Store:     db,
		Auth:      authService,
		Progress:  progressService,
		Analytics: analyticsService,
		Execution: executionService,
		Tutor:     tutorService,
		RPS:       cfg.RPS,
		Burst:     cfg.Burst,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает внешние ресурсы в порядке, обратном открытию.
func (a *App) close() {
	if err := a.events.Close(); err != nil {
		a.logger.Error("failed to close event publisher", sl.Err(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}

type closableNoop struct {
	events.Noop
}

func (closableNoop) Close() error { return nil }
