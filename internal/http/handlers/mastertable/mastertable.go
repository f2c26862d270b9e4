// Package mastertable реализует HTTP-обработчик сводной таблицы:
// отдает активные строки опубликованного CSV с фильтрами и сортировкой.
package mastertable

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/table"
)

// Service описывает интерфейс загрузки сводной таблицы.
type Service interface {
	Fetch(ctx context.Context) ([]string, [][]string, error)
}

// Handler обрабатывает HTTP-запросы сводной таблицы.
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
// @Summary Сводная таблица
// @Description Возвращает активные строки опубликованного CSV без колонки статуса, с фильтрами f_<индекс> и сортировкой.
// @Tags Table
// @Produce  json
// @Param sort query int false "Индекс колонки сортировки"
// @Param dir query string false "Направление сортировки: desc"
// @Success 200 {object} response.Response "Колонки и строки"
// @Failure 500 {object} response.ErrorResponse "Не удалось загрузить таблицу"
// @Router /mastertable [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mastertable"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	columns, rows, err := h.service.Fetch(r.Context())
	if err != nil {
		log.Error("failed to fetch master table", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load master table"))
		return
	}

	filters, sortCol, desc := table.ParseQuery(r.URL.Query())
	rows = filters.Apply(rows)
	table.Sort(rows, sortCol, desc)

	log.Info("master table served", slog.Int("rows", len(rows)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"columns": columns,
		"rows":    rows,
	}))
}
