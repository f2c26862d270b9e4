package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
)

// AccessChecker сообщает, открыт ли пользователю доступ к закрытым разделам.
type AccessChecker interface {
	HasActiveAccess(ctx context.Context, userUID string) (bool, error)
}

// SubscriptionAccessMiddleware закрывает маршруты от пользователей
// без действующей подписки. Администраторская сессия проходит всегда.
func SubscriptionAccessMiddleware(log *slog.Logger, checker AccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAdminSession(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			userUID := UserUIDFromContext(r.Context())
			if userUID == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			ok, err := checker.HasActiveAccess(r.Context(), userUID)
			if err != nil {
				log.Error("failed to check subscription access", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal server error"))
				return
			}
			if !ok {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription inactive, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
