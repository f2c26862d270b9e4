// Package syncsheets реализует HTTP-обработчик ручного запуска
// выгрузки подписок в Google Sheets.
package syncsheets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/services/sync"
)

// Service описывает интерфейс выгрузки подписок в лист.
type Service interface {
	Run(ctx context.Context) (*sync.Result, error)
}

// Handler обрабатывает HTTP-запросы запуска выгрузки.
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
// @Summary Выгрузка подписок в Google Sheets
// @Description Запускает полную сверку базы с листом: помечает осиротевшие строки, обновляет совпавшие и дописывает новые.
// @Tags Sync
// @Produce  json
// @Success 200 {object} response.Response "Итоги выгрузки"
// @Failure 500 {object} response.ErrorResponse "Ошибка выгрузки с подсказкой о причине"
// @Router /sync-sheets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.syncsheets"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Run(r.Context())
	if err != nil {
		log.Error("sheet sync failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(sync.ClassifyError(err)))
		return
	}

	log.Info("sheet sync finished",
		slog.Int("synced", result.Synced), slog.Int("marked_inactive", result.MarkedInactive))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"synced":          result.Synced,
		"marked_inactive": result.MarkedInactive,
	}))
}
