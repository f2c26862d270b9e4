// Package currentuser реализует HTTP-обработчик запроса текущей сессии.
//
// Обработчик всегда отвечает 200: почта пользователя, строка "ADMIN"
// для администраторской сессии или null при её отсутствии.
package currentuser

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/middlewarectx"
	"github.com/magabrotheeeer/grocery-share/internal/http/response"
)

// Handler обрабатывает HTTP-запросы текущей сессии.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает почту текущего пользователя, "ADMIN" для администратора или null без сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Состояние сессии"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.currentuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ctx := r.Context()
	switch {
	case middlewarectx.IsAdminSession(ctx):
		render.JSON(w, r, response.OKWithData(map[string]any{
			"email": "ADMIN",
		}))
	case middlewarectx.HasSession(ctx):
		render.JSON(w, r, response.OKWithData(map[string]any{
			"email": middlewarectx.UserEmailFromContext(ctx),
		}))
	default:
		log.Debug("no session")
		render.JSON(w, r, response.OKWithData(map[string]any{
			"email": nil,
		}))
	}
}
