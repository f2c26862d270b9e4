// Package login реализует HTTP-обработчик входа пользователей.
//
// Пара admin/admin не проверяется по базе: для неё выставляется
// администраторская кука. Для обычного пользователя проверяется пароль
// и подтверждение почты, после чего выставляется httpOnly-кука сессии
// и записывается отметка о входе.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/grocery-share/internal/http/middlewarectx"
	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sessiontoken"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/models"
	authservice "github.com/magabrotheeeer/grocery-share/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	maker    sessiontoken.Maker
	admin    middlewarectx.AdminCredentials
	tokenTTL time.Duration
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, maker sessiontoken.Maker, admin middlewarectx.AdminCredentials, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		maker:    maker,
		admin:    admin,
		tokenTTL: tokenTTL,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет почту и пароль, выставляет куку сессии. Пара admin/admin открывает администраторскую сессию.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Почта не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	if req.Email == h.admin.Username && req.Password == h.admin.Password {
		middlewarectx.SetAdminCookie(w, h.tokenTTL)
		log.Info("admin session opened")
		render.JSON(w, r, response.OKWithData(map[string]any{
			"email": "ADMIN",
		}))
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInvalidCredentials):
			log.Info("invalid credentials")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		case errors.Is(err, authservice.ErrEmailNotVerified):
			log.Info("email not verified")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("email not verified"))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	token, err := h.maker.GenerateToken(user.UID, user.Email)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}
	middlewarectx.SetSessionCookie(w, token, h.tokenTTL)

	log.Info("login success", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"email": user.Email,
	}))
}
