// Package dataset загружает табличные наборы данных категорий продуктов.
//
// Основной источник — заранее сконвертированные файлы data/<name>.json
// (массив строк, первая строка — заголовок). Если JSON отсутствует,
// читается первый подходящий xlsx-файл из каталога исходных списков.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNotFound возвращается для неизвестной категории.
var ErrNotFound = errors.New("dataset not found")

// Loader читает наборы данных из файловой системы.
type Loader struct {
	dataDir  string // Каталог с json-наборами
	listsDir string // Каталог с исходными xlsx-списками
}

// NewLoader создает Loader с каталогами данных.
func NewLoader(dataDir, listsDir string) *Loader {
	return &Loader{
		dataDir:  dataDir,
		listsDir: listsDir,
	}
}

// Load возвращает заголовок и строки набора name.
func (l *Loader) Load(name string) ([]string, [][]string, error) {
	const op = "dataset.Load"

	rows, err := l.loadJSON(name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == nil {
		rows, err = l.loadXLSX(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return rows[0], rows[1:], nil
}

func (l *Loader) loadJSON(name string) ([][]string, error) {
	path := filepath.Join(l.dataDir, name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// loadXLSX читает первый xlsx-файл каталога списков, имя которого
// начинается с имени набора (без учета регистра).
func (l *Loader) loadXLSX(name string) ([][]string, error) {
	entries, err := os.ReadDir(l.listsDir)
	if err != nil {
		return nil, ErrNotFound
	}

	prefix := strings.ToLower(name)
	for _, entry := range entries {
		fileName := strings.ToLower(entry.Name())
		if entry.IsDir() || !strings.HasSuffix(fileName, ".xlsx") || !strings.HasPrefix(fileName, prefix) {
			continue
		}
		f, err := excelize.OpenFile(filepath.Join(l.listsDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()

		sheetName := f.GetSheetName(0)
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}
	return nil, ErrNotFound
}
