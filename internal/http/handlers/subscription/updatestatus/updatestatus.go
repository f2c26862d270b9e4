// Package updatestatus реализует HTTP-обработчик смены статуса подписки.
package updatestatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/grocery-share/internal/http/middlewarectx"
	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	subservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
)

// Request — структура входных данных для смены статуса подписки.
type Request struct {
	SubscriptionID int    `json:"subscription_id" validate:"required"`
	Status         string `json:"status" validate:"required"`
}

// Service описывает интерфейс бизнес-логики смены статуса подписки.
type Service interface {
	UpdateStatus(ctx context.Context, id int, status, userUID string, isAdmin bool) error
}

// Handler обрабатывает HTTP-запросы смены статуса подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена статуса подписки
// @Description Выставляет подписке один из допустимых статусов: active, expired, cancelled, pending_renewal.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "ID подписки и новый статус"
// @Success 200 {object} response.Response "Статус обновлен"
// @Failure 400 {object} response.ErrorResponse "Недопустимый статус"
// @Failure 401 {object} response.ErrorResponse "Нет активной сессии"
// @Failure 403 {object} response.ErrorResponse "Подписка другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/status [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.updatestatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ctx := r.Context()
	isAdmin := middlewarectx.IsAdminSession(ctx)
	userUID := middlewarectx.UserUIDFromContext(ctx)
	if !isAdmin && userUID == "" {
		log.Info("no user session")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	if err := h.service.UpdateStatus(ctx, req.SubscriptionID, req.Status, userUID, isAdmin); err != nil {
		switch {
		case errors.Is(err, subservice.ErrInvalidStatus):
			log.Info("invalid status", slog.String("status", req.Status))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid status"))
		case errors.Is(err, subservice.ErrNotFound):
			log.Info("subscription not found", slog.Int("id", req.SubscriptionID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, subservice.ErrForbidden):
			log.Info("subscription belongs to another user", slog.Int("id", req.SubscriptionID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		default:
			log.Error("failed to update subscription status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	log.Info("subscription status updated",
		slog.Int("id", req.SubscriptionID), slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
