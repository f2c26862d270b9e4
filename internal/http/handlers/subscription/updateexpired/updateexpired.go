// Package updateexpired реализует HTTP-обработчик ручного перевода
// истекших подписок в статус inactive.
package updateexpired

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	subservice "github.com/magabrotheeeer/grocery-share/internal/services/subscription"
)

// Service описывает интерфейс бизнес-логики перевода истекших подписок.
type Service interface {
	UpdateExpired(ctx context.Context) (*subservice.SweepResult, error)
}

// Handler обрабатывает HTTP-запросы перевода истекших подписок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Перевод истекших подписок в inactive
// @Description Находит подписки с прошедшей датой окончания и переводит их в inactive. Возвращает итоги прохода.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Итоги прохода"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/update-expired [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.updateexpired"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.UpdateExpired(r.Context())
	if err != nil {
		log.Error("failed to update expired subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("expired subscriptions updated",
		slog.Int("checked", result.Checked), slog.Int("updated", result.Updated))
	render.JSON(w, r, response.OKWithData(result))
}
