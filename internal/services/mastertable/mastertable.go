// Package mastertable загружает опубликованную мастер-таблицу из Google Sheets
// в формате CSV и оставляет только активные строки.
package mastertable

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Колонка статуса ищется по имени заголовка.
const statusHeader = "status"

// Service загружает и фильтрует мастер-таблицу.
type Service struct {
	csvURL string
	client *http.Client
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(csvURL string, log *slog.Logger) *Service {
	return &Service{
		csvURL: csvURL,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Fetch возвращает заголовок и строки мастер-таблицы. Строки со статусом,
// отличным от "Active", отбрасываются; сама колонка статуса скрывается.
func (s *Service) Fetch(ctx context.Context) ([]string, [][]string, error) {
	const op = "mastertable.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.csvURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	statusCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), statusHeader) {
			statusCol = i
			break
		}
	}

	columns := dropColumn(header, statusCol)
	var rows [][]string
	for _, record := range records[1:] {
		if statusCol >= 0 {
			status := ""
			if statusCol < len(record) {
				status = strings.TrimSpace(record[statusCol])
			}
			if status != "Active" {
				continue
			}
		}
		rows = append(rows, dropColumn(record, statusCol))
	}
	s.log.Info("fetched master table", slog.Int("rows", len(rows)))
	return columns, rows, nil
}

func dropColumn(row []string, col int) []string {
	if col < 0 || col >= len(row) {
		result := make([]string, len(row))
		copy(result, row)
		return result
	}
	result := make([]string, 0, len(row)-1)
	result = append(result, row[:col]...)
	result = append(result, row[col+1:]...)
	return result
}
