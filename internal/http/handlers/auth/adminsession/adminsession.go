// Package adminsession реализует HTTP-обработчик открытия
// администраторской сессии по служебным учетным данным.
package adminsession

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/grocery-share/internal/http/middlewarectx"
	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
)

// Request — структура входных данных администраторского входа.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы администраторского входа.
type Handler struct {
	log       *slog.Logger
	creds     middlewarectx.AdminCredentials
	cookieTTL time.Duration
	validate  *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, creds middlewarectx.AdminCredentials, cookieTTL time.Duration) *Handler {
	return &Handler{
		log:       log,
		creds:     creds,
		cookieTTL: cookieTTL,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Администраторский вход
// @Description Открывает администраторскую сессию по служебной паре логин/пароль.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Логин и пароль администратора"
// @Success 200 {object} response.Response "Сессия открыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/admin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.adminsession"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if req.Username != h.creds.Username || req.Password != h.creds.Password {
		log.Info("invalid admin credentials")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	middlewarectx.SetAdminCookie(w, h.cookieTTL)
	log.Info("admin session opened")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"email": "ADMIN",
	}))
}
