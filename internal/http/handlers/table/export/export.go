// Package export реализует HTTP-обработчик выгрузки табличных данных
// категории в файл: CSV, Excel или текст с табуляцией.
package export

import (
	"errors"
	"fmt"
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

// Handler обрабатывает HTTP-запросы выгрузки таблицы в файл.
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
// @Summary Выгрузка таблицы в файл
// @Description Отдает строки набора с учетом фильтров и сортировки в формате csv, excel или txt.
// @Tags Table
// @Produce  octet-stream
// @Param category path string true "Имя категории"
// @Param format query string true "Формат файла: csv, excel, txt"
// @Success 200 {file} file "Файл выгрузки"
// @Failure 400 {object} response.ErrorResponse "Неизвестный формат"
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /table/{category}/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.table.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = table.FormatCSV
	}
	if format != table.FormatCSV && format != table.FormatExcel && format != table.FormatText {
		log.Info("unknown export format", slog.String("format", format))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown format"))
		return
	}

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

	var body []byte
	var contentType, filename string
	switch format {
	case table.FormatCSV:
		body = table.ExportCSV(columns, rows)
		contentType = "text/csv; charset=utf-8"
		filename = category + ".csv"
	case table.FormatExcel:
		body = table.ExportExcel(columns, rows)
		contentType = "application/vnd.ms-excel"
		filename = category + ".xls"
	case table.FormatText:
		body = table.ExportText(columns, rows)
		contentType = "text/plain; charset=utf-8"
		filename = category + ".txt"
	}

	log.Info("table exported",
		slog.String("category", category),
		slog.String("format", format),
		slog.Int("rows", len(rows)))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
