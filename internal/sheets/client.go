// Package sheets реализует клиент Google Sheets для односторонней
// выгрузки подписок. Данные живут со второй строки листа, первая
// строка — заголовок.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/magabrotheeeer/grocery-share/internal/config"
)

// dataRange покрывает все строки данных листа, заголовок не входит.
const dataRange = "A2:Z1000"

// Api описывает операции с листом, используемые сервисом синхронизации.
type Api interface {
	// Read возвращает все строки данных листа (без заголовка).
	Read(ctx context.Context) ([][]string, error)
	// UpdateRow перезаписывает строку данных с индексом rowIndex (0 — первая строка данных).
	UpdateRow(ctx context.Context, rowIndex int, row []string) error
	// Write записывает блок строк, начиная со строки данных startIndex.
	Write(ctx context.Context, rows [][]string, startIndex int) error
}

// Client инкапсулирует сервис Google Sheets и параметры листа.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewClient создает клиент по файлу учетных данных сервисного аккаунта.
func NewClient(ctx context.Context, cfg config.GoogleSheets) (*Client, error) {
	const op = "sheets.NewClient"
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Client{
		srv:           srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Read возвращает все строки данных листа.
func (c *Client) Read(ctx context.Context) ([][]string, error) {
	const op = "sheets.Read"
	rng := fmt.Sprintf("%s!%s", c.sheetName, dataRange)
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		result = append(result, cells)
	}
	return result, nil
}

// UpdateRow перезаписывает одну строку данных.
func (c *Client) UpdateRow(ctx context.Context, rowIndex int, row []string) error {
	const op = "sheets.UpdateRow"
	// Первая строка данных находится в строке листа номер 2.
	rng := fmt.Sprintf("%s!A%d", c.sheetName, rowIndex+2)
	vr := &sheets.ValueRange{Values: [][]any{toAnyRow(row)}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Write записывает блок строк, начиная со строки данных startIndex.
func (c *Client) Write(ctx context.Context, rows [][]string, startIndex int) error {
	const op = "sheets.Write"
	if len(rows) == 0 {
		return nil
	}
	if startIndex < 0 {
		startIndex = 0
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, toAnyRow(row))
	}
	rng := fmt.Sprintf("%s!A%d", c.sheetName, startIndex+2)
	vr := &sheets.ValueRange{Values: values}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func toAnyRow(row []string) []any {
	result := make([]any, len(row))
	for i, cell := range row {
		result[i] = cell
	}
	return result
}
