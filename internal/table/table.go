// Package table реализует движок административных таблиц:
// нормализацию значений, фильтрацию по колонкам, сортировку и экспорт.
package table

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer раскладывает символы по NFKD и выбрасывает диакритику,
// чтобы "Créme" и "Creme" совпадали при фильтрации.
var normalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize приводит значение ячейки к канонической форме для сравнения:
// без диакритики, в нижнем регистре, "&" заменяется на "and",
// последовательности прочих символов схлопываются в один пробел.
func Normalize(s string) string {
	folded, _, err := transform.String(normalizer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "&", " and ")

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Filters — значения фильтров по индексам колонок.
// Строка вида JSON-массива означает точное совпадение с одним из значений,
// любая другая строка — поиск подстроки. Сравнение идет по Normalize.
type Filters map[int]string

// Apply возвращает строки, прошедшие все фильтры.
func (f Filters) Apply(rows [][]string) [][]string {
	if len(f) == 0 {
		return rows
	}

	result := make([][]string, 0, len(rows))
	for _, row := range rows {
		if f.matches(row) {
			result = append(result, row)
		}
	}
	return result
}

func (f Filters) matches(row []string) bool {
	for col, value := range f {
		if value == "" {
			continue
		}
		cell := ""
		if col >= 0 && col < len(row) {
			cell = row[col]
		}
		normalized := Normalize(cell)

		if set, ok := parseValueSet(value); ok {
			if _, found := set[normalized]; !found {
				return false
			}
			continue
		}
		if !strings.Contains(normalized, Normalize(value)) {
			return false
		}
	}
	return true
}

// parseValueSet пытается разобрать значение фильтра как JSON-массив строк.
func parseValueSet(value string) (map[string]struct{}, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return nil, false
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}
	return set, true
}

// ParseQuery извлекает из query-параметров фильтры (f_<индекс колонки>),
// колонку сортировки (sort) и направление (dir=desc).
// Отрицательная колонка сортировки означает отсутствие сортировки.
func ParseQuery(values url.Values) (Filters, int, bool) {
	filters := Filters{}
	for key, vals := range values {
		if !strings.HasPrefix(key, "f_") || len(vals) == 0 {
			continue
		}
		col, err := strconv.Atoi(strings.TrimPrefix(key, "f_"))
		if err != nil {
			continue
		}
		filters[col] = vals[0]
	}

	sortCol := -1
	if raw := values.Get("sort"); raw != "" {
		if col, err := strconv.Atoi(raw); err == nil {
			sortCol = col
		}
	}
	desc := values.Get("dir") == "desc"
	return filters, sortCol, desc
}

// Sort устойчиво сортирует строки по колонке col, сравнивая значения
// в нижнем регистре побайтово. desc инвертирует порядок.
func Sort(rows [][]string, col int, desc bool) {
	if col < 0 {
		return
	}
	cell := func(row []string) string {
		if col < len(row) {
			return strings.ToLower(row[col])
		}
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return cell(rows[i]) > cell(rows[j])
		}
		return cell(rows[i]) < cell(rows[j])
	})
}
