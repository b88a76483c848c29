// Package middlewarectx содержит HTTP middleware аутентификации, проверки прав
// администратора и ограничения частоты запросов.
//
// JWTMiddleware требует валидный токен в заголовке Authorization и кладёт
// пользователя в контекст запроса. OptionalJWTMiddleware делает то же самое,
// но при отсутствии или невалидности токена пропускает запрос как анонимный.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cl-scripter/learning-api/internal/http/response"
	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey ключ аутентифицированного пользователя в контексте.
const UserKey Key = "user"

const bearerPrefix = "Bearer "

var errMissingToken = errors.New("missing or invalid authorization header")

// Authenticator проверяет токен и возвращает его владельца.
// Отказ в доступе оборачивает models.ErrUnauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext возвращает пользователя запроса, если он аутентифицирован.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok && u != nil
}

// UserIDFromContext возвращает ID пользователя или nil для анонимного запроса.
func UserIDFromContext(ctx context.Context) *string {
	if u, ok := UserFromContext(ctx); ok {
		id := u.ID
		return &id
	}
	return nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// JWTMiddleware возвращает HTTP middleware, который требует валидный токен.
//
// Без токена, с невалидным или просроченным токеном, а также если владелец
// токена не найден, отвечает 401 Unauthorized. Прочие ошибки Authenticator
// (например, недоступность хранилища) дают 500.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := bearerToken(r)
			if err != nil {
				log.Info("request without bearer token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, models.ErrUnauthenticated):
				log.Info("token rejected", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(models.ErrUnauthenticated.Error()))
				return
			case err != nil:
				log.Error("failed to authenticate request", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalJWTMiddleware пытается аутентифицировать запрос и никогда его не отклоняет.
func OptionalJWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug("optional token ignored",
					slog.String("request_id", middleware.GetReqID(r.Context())), sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
