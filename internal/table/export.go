package table

import (
	"html"
	"strings"
)

// Форматы экспорта таблицы.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatText  = "txt"
)

// ExportCSV формирует CSV-файл: каждая ячейка в кавычках, внутренние
// кавычки удваиваются, в начале файла — BOM для корректного открытия
// в Excel, строки разделяются \n. Первая строка — заголовок.
func ExportCSV(columns []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString("\uFEFF")
	writeCSVRow(&b, columns)
	for _, row := range rows {
		writeCSVRow(&b, row)
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// ExportExcel формирует минимальный HTML-документ с таблицей.
// Excel открывает такой файл с расширением .xls без импорта.
func ExportExcel(columns []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"UTF-8\"></head><body><table border=\"1\">\n")
	b.WriteString("<thead><tr>")
	for _, col := range columns {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody></table></body></html>")
	return []byte(b.String())
}

// ExportText формирует текстовый файл: ячейки через табуляцию, строки через \n.
func ExportText(columns []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(columns, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
