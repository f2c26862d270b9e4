// Package grid реализует HTTP-обработчик табличных данных категории:
// загрузку набора, фильтрацию по колонкам и сортировку.
package grid

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/grocery-share/internal/dataset"
	"github.com/magabrotheeeer/grocery-share/internal/http/response"
	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/table"
)

// Loader описывает интерфейс загрузки набора данных по имени категории.
type Loader interface {
	Load(name string) ([]string, [][]string, error)
}

// Handler обрабатывает HTTP-запросы табличных данных.
type Handler struct {
	log    *slog.Logger
	loader Loader
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, loader Loader) *Handler {
	return &Handler{
		log:    log,
		loader: loader,
	}
}

// ServeHTTP godoc
// @Summary Табличные данные категории
// @Description Возвращает строки набора с учетом фильтров f_<индекс колонки>, сортировки sort и направления dir.
// @Tags Table
// @Produce  json
// @Param category path string true "Имя категории"
// @Param sort query int false "Индекс колонки сортировки"
// @Param dir query string false "Направление сортировки: desc"
// @Success 200 {object} response.Response "Колонки и строки"
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /table/{category} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.table.grid"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := chi.URLParam(r, "category")
	columns, rows, err := h.loader.Load(category)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			log.Info("dataset not found", slog.String("category", category))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
			return
		}
		log.Error("failed to load dataset", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	filters, sortCol, desc := table.ParseQuery(r.URL.Query())
	rows = filters.Apply(rows)
	table.Sort(rows, sortCol, desc)

	log.Info("table served",
		slog.String("category", category), slog.Int("rows", len(rows)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"columns": columns,
		"rows":    rows,
	}))
}
