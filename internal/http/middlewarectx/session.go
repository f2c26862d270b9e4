// Package middlewarectx содержит HTTP middleware для работы с куками сессии.
//
// SessionMiddleware разбирает куки сессии и администратора и кладет данные
// пользователя в контекст запроса. RequireSession и RequireAdmin закрывают
// группы маршрутов от неавторизованных запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sessiontoken"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
)

// Имена кук, которые выставляет сервер.
const (
	// SessionCookie — httpOnly-кука с токеном пользовательской сессии.
	SessionCookie = "grocery-share-session"
	// AdminCookie — кука служебного администраторского входа.
	AdminCookie = "grocery-share-admin"
)

// AdminCredentials — служебная пара логин/пароль администраторского входа.
// Одна и та же пара проверяется обработчиком /auth/admin и веткой
// admin-обхода обычного входа.
type AdminCredentials struct {
	Username string
	Password string
}

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// UserEmail — ключ для почты пользователя в контексте
	UserEmail Key = "user_email"
	// IsAdmin — ключ признака администраторской сессии в контексте
	IsAdmin Key = "is_admin"
)

// SetSessionCookie выставляет куку сессии с токеном.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// SetAdminCookie выставляет куку администраторского входа.
func SetAdminCookie(w http.ResponseWriter, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookies удаляет обе куки.
func ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookie, AdminCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// SessionMiddleware возвращает HTTP middleware, который разбирает куки
// запроса и кладет uid, почту и признак администратора в контекст.
// Запрос без кук проходит дальше с пустым контекстом сессии.
func SessionMiddleware(maker sessiontoken.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			ctx := r.Context()
			if cookie, err := r.Cookie(AdminCookie); err == nil && cookie.Value == "1" {
				ctx = context.WithValue(ctx, IsAdmin, true)
			}
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				claims, err := maker.ParseToken(cookie.Value)
				if err != nil {
					log.Info("invalid session token",
						slog.String("op", op),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						sl.Err(err))
				} else {
					ctx = context.WithValue(ctx, UserUID, claims.UserUID)
					ctx = context.WithValue(ctx, UserEmail, claims.Email)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession пропускает только запросы с пользовательской
// или администраторской сессией.
func RequireSession(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasSession(r.Context()) {
				log.Info("request without session rejected")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin пропускает только запросы с администраторской сессией.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminSession(r.Context()) {
				log.Info("request without admin session rejected")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserUIDFromContext возвращает uid пользователя из контекста.
func UserUIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserUID).(string)
	return uid
}

// UserEmailFromContext возвращает почту пользователя из контекста.
func UserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmail).(string)
	return email
}

// IsAdminSession сообщает, является ли сессия администраторской.
func IsAdminSession(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdmin).(bool)
	return isAdmin
}

// HasSession сообщает, есть ли в запросе любая действительная сессия.
func HasSession(ctx context.Context) bool {
	return UserUIDFromContext(ctx) != "" || IsAdminSession(ctx)
}
